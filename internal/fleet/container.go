package fleet

import (
	"context"
	"fmt"
	"strings"

	"ytfleet/internal/config"
)

// StateRunning is the single non-terminal group state the orchestrator
// cares about. Any other state means the group may be deleted and
// recreated.
const StateRunning = "Running"

// Group is the orchestrator's view of a container group.
type Group struct {
	ID     string
	Name   string
	Region string
	State  string
}

// GroupSpec describes a container group to create. The orchestrator owns
// its lifecycle but not its runtime; workers never restart on exit.
type GroupSpec struct {
	Name           string
	ResourceGroup  string
	Region         string
	Image          string
	Registry       string
	RegistryUser   string
	RegistrySecret string
	CPUCores       int
	MemoryGB       float64
	Env            map[string]string
	Command        []string
	RestartPolicy  string
}

// ContainerAPI is the three-operation surface the orchestrator needs from
// the cloud container service.
type ContainerAPI interface {
	GetByName(ctx context.Context, resourceGroup, name string) (*Group, error)
	Delete(ctx context.Context, id string) error
	Create(ctx context.Context, spec GroupSpec) (*Group, error)
}

// ConflictError signals an attempt to launch a worker group that is
// already running. It aborts that group's launch only.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("container group %s is already running", e.Name)
}

// buildSpec renders one batch into a container group spec implementing
// the worker launch contract: positional args
// `update -t <updateType> -c <id1>|<id2>|...` plus the storage connection
// string and environment name as env vars.
func buildSpec(cfg config.Config, name, region string, args []string) GroupSpec {
	c := cfg.Container
	return GroupSpec{
		Name:           name,
		ResourceGroup:  c.ResourceGroup,
		Region:         region,
		Image:          fmt.Sprintf("%s/%s", c.Registry, c.Image),
		Registry:       c.Registry,
		RegistryUser:   c.RegistryUser,
		RegistrySecret: c.RegistrySecret,
		CPUCores:       c.Cores,
		MemoryGB:       c.MemoryGB,
		Env: map[string]string{
			"YTFLEET_STORE_CONNECTION_STRING": cfg.Store.ConnectionString,
			"YTFLEET_ENV":                     cfg.Env,
		},
		Command:       append([]string{"/app/ytfleet"}, args...),
		RestartPolicy: "Never",
	}
}

// updateArgs renders the worker argument surface for one batch.
func updateArgs(updateType string, channelIDs []string) []string {
	return []string{
		"update",
		"-t", updateType,
		"-c", strings.Join(channelIDs, "|"),
	}
}
