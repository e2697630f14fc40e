package watchdog

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/cathy-ai/companion-gateway/internal/logger"
)

// ErrDockerRequestFailed wraps every non-success answer from the Docker
// engine API.
var ErrDockerRequestFailed = errors.New("docker request failed")

// ContainerManager is what the monitor and the wake listener need from a
// container runtime.
type ContainerManager interface {
	StopContainer(ctx context.Context, name string) error
	StartContainer(ctx context.Context, name string) error
}

// DockerClient talks to the Docker engine API over its unix socket.
// Only the two container lifecycle calls the watchdog needs are exposed.
type DockerClient struct {
	http   *resty.Client
	logger *logger.Logger
}

func NewDockerClient(socketPath string, logger *logger.Logger) *DockerClient {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}

	// The host part is ignored once the dialer pins the unix socket.
	client := resty.New().
		SetTransport(transport).
		SetBaseURL("http://docker")

	return &DockerClient{http: client, logger: logger}
}

// StopContainer issues POST /containers/{name}/stop. A 304 from the engine
// means the container is already stopped and counts as success.
func (c *DockerClient) StopContainer(ctx context.Context, name string) error {
	return c.post(ctx, fmt.Sprintf("/containers/%s/stop", name))
}

// StartContainer issues POST /containers/{name}/start. A 304 means the
// container is already running and counts as success.
func (c *DockerClient) StartContainer(ctx context.Context, name string) error {
	return c.post(ctx, fmt.Sprintf("/containers/%s/start", name))
}

func (c *DockerClient) post(ctx context.Context, path string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDockerRequestFailed, err)
	}

	if resp.IsSuccess() || resp.StatusCode() == http.StatusNotModified {
		return nil
	}

	return fmt.Errorf("%w: %s returned status %d", ErrDockerRequestFailed, path, resp.StatusCode())
}
