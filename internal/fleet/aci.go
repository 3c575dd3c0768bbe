package fleet

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/containerinstance/armcontainerinstance/v2"

	"ytfleet/internal/config"
)

// ACIClient implements ContainerAPI on Azure Container Instances. It is
// deliberately thin: the orchestrator and all tests depend only on the
// ContainerAPI interface.
type ACIClient struct {
	groups *armcontainerinstance.ContainerGroupsClient
}

// NewACIClient builds a client authenticating via service principal
// client credentials.
func NewACIClient(cfg config.ContainerConfig) (*ACIClient, error) {
	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("build credential: %w", err)
	}
	groups, err := armcontainerinstance.NewContainerGroupsClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("build container groups client: %w", err)
	}
	return &ACIClient{groups: groups}, nil
}

// GetByName returns the named group, or nil when it does not exist.
func (c *ACIClient) GetByName(ctx context.Context, resourceGroup, name string) (*Group, error) {
	resp, err := c.groups.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get container group %s: %w", name, err)
	}
	return toGroup(resp.ContainerGroup), nil
}

// Delete removes a group by its full resource id and waits for the
// deletion to finish, so a recreate under the same name cannot race it.
func (c *ACIClient) Delete(ctx context.Context, id string) error {
	rid, err := arm.ParseResourceID(id)
	if err != nil {
		return fmt.Errorf("parse container group id %s: %w", id, err)
	}
	poller, err := c.groups.BeginDelete(ctx, rid.ResourceGroupName, rid.Name, nil)
	if err != nil {
		return fmt.Errorf("delete container group %s: %w", rid.Name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("delete container group %s: %w", rid.Name, err)
	}
	return nil
}

// Create submits the group spec and returns the created group.
func (c *ACIClient) Create(ctx context.Context, spec GroupSpec) (*Group, error) {
	poller, err := c.groups.BeginCreateOrUpdate(ctx, spec.ResourceGroup, spec.Name, newContainerGroup(spec), nil)
	if err != nil {
		return nil, fmt.Errorf("create container group %s: %w", spec.Name, err)
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create container group %s: %w", spec.Name, err)
	}
	return toGroup(resp.ContainerGroup), nil
}

// newContainerGroup renders a GroupSpec into the SDK model. Env values go
// through SecureValue so the connection string never shows up in the
// portal or in Get responses.
func newContainerGroup(spec GroupSpec) armcontainerinstance.ContainerGroup {
	env := make([]*armcontainerinstance.EnvironmentVariable, 0, len(spec.Env))
	for name, value := range spec.Env {
		env = append(env, &armcontainerinstance.EnvironmentVariable{
			Name:        to.Ptr(name),
			SecureValue: to.Ptr(value),
		})
	}
	command := make([]*string, 0, len(spec.Command))
	for _, arg := range spec.Command {
		command = append(command, to.Ptr(arg))
	}

	container := &armcontainerinstance.Container{
		Name: to.Ptr(spec.Name),
		Properties: &armcontainerinstance.ContainerProperties{
			Image:                to.Ptr(spec.Image),
			Command:              command,
			EnvironmentVariables: env,
			Resources: &armcontainerinstance.ResourceRequirements{
				Requests: &armcontainerinstance.ResourceRequests{
					CPU:        to.Ptr(float64(spec.CPUCores)),
					MemoryInGB: to.Ptr(spec.MemoryGB),
				},
			},
		},
	}

	return armcontainerinstance.ContainerGroup{
		Location: to.Ptr(spec.Region),
		Properties: &armcontainerinstance.ContainerGroupPropertiesProperties{
			OSType:        to.Ptr(armcontainerinstance.OperatingSystemTypesLinux),
			RestartPolicy: to.Ptr(armcontainerinstance.ContainerGroupRestartPolicyNever),
			Containers:    []*armcontainerinstance.Container{container},
			ImageRegistryCredentials: []*armcontainerinstance.ImageRegistryCredential{{
				Server:   to.Ptr(spec.Registry),
				Username: to.Ptr(spec.RegistryUser),
				Password: to.Ptr(spec.RegistrySecret),
			}},
		},
	}
}

func toGroup(cg armcontainerinstance.ContainerGroup) *Group {
	var state string
	if cg.Properties != nil {
		switch {
		case cg.Properties.InstanceView != nil && cg.Properties.InstanceView.State != nil:
			state = *cg.Properties.InstanceView.State
		case cg.Properties.ProvisioningState != nil:
			state = *cg.Properties.ProvisioningState
		}
	}
	return &Group{
		ID:     deref(cg.ID),
		Name:   deref(cg.Name),
		Region: deref(cg.Location),
		State:  state,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
