package khawasu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khawasu/cloud-bridge/internal/infrastructure/mqtt"
)

// Driver is the logical-driver interface the translation layer consumes.
type Driver interface {
	// ListDevices returns every device currently known to the driver.
	ListDevices(ctx context.Context) ([]RawDevice, error)

	// Execute dispatches a command to one action of one device. The data
	// bytes must already be encoded per the action's type (EncodeValue).
	Execute(ctx context.Context, address, action string, data []byte) error

	// ActionGet reads the current raw value of one action.
	ActionGet(ctx context.Context, address, action string) ([]byte, error)
}

// RPC topics. Requests carry a correlation ID; the driver answers on the
// response topic suffixed with that ID.
const (
	requestTopic        = "khawasu/rpc/request"
	responseTopicPrefix = "khawasu/rpc/response/"
	responseTopicFilter = responseTopicPrefix + "+"
)

// statusOK is the driver's success status in RPC responses.
const statusOK = "ok"

// rpcRequest is one call to the logical driver.
type rpcRequest struct {
	ID      string `json:"id"`
	Method  string `json:"method"`
	Address string `json:"address,omitempty"`
	Action  string `json:"action,omitempty"`
	Data    []byte `json:"data,omitempty"` // base64 via encoding/json
}

// rpcResponse is the driver's answer.
type rpcResponse struct {
	ID      string      `json:"id"`
	Status  string      `json:"status"`
	Devices []RawDevice `json:"devices,omitempty"`
	Data    []byte      `json:"data,omitempty"`
}

// Logger is the optional logging interface for the client.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Client talks to the Khawasu logical driver over the MQTT link using a
// request/response scheme with per-call correlation IDs.
//
// All methods are safe for concurrent use; concurrent calls are matched to
// their responses independently.
type Client struct {
	conn    *mqtt.Client
	qos     byte
	timeout time.Duration
	logger  Logger

	pending map[string]chan rpcResponse
	mu      sync.Mutex
}

// NewClient creates a driver client on an established MQTT connection and
// subscribes to the response topic. timeout bounds every individual call.
func NewClient(conn *mqtt.Client, qos byte, timeout time.Duration) (*Client, error) {
	c := &Client{
		conn:    conn,
		qos:     qos,
		timeout: timeout,
		logger:  noopLogger{},
		pending: make(map[string]chan rpcResponse),
	}

	if err := conn.Subscribe(responseTopicFilter, qos, c.handleResponse); err != nil {
		return nil, fmt.Errorf("subscribing to driver responses: %w", err)
	}

	return c, nil
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// ListDevices returns every device currently known to the driver.
func (c *Client) ListDevices(ctx context.Context) ([]RawDevice, error) {
	resp, err := c.call(ctx, rpcRequest{Method: "list-devices"})
	if err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// Execute dispatches a command to one action of one device.
//
// A nil error means the broker accepted the command and the driver
// acknowledged dispatch; there is no end-device confirmation beyond that.
func (c *Client) Execute(ctx context.Context, address, action string, data []byte) error {
	_, err := c.call(ctx, rpcRequest{
		Method:  "execute",
		Address: address,
		Action:  action,
		Data:    data,
	})
	return err
}

// ActionGet reads the current raw value of one action.
func (c *Client) ActionGet(ctx context.Context, address, action string) ([]byte, error) {
	resp, err := c.call(ctx, rpcRequest{
		Method:  "action-get",
		Address: address,
		Action:  action,
	})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// call publishes one request and waits for its correlated response.
func (c *Client) call(ctx context.Context, req rpcRequest) (rpcResponse, error) {
	req.ID = uuid.NewString()

	ch := make(chan rpcResponse, 1)
	c.mu.Lock()
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	payload, err := json.Marshal(req)
	if err != nil {
		return rpcResponse{}, fmt.Errorf("encoding driver request: %w", err)
	}

	if err := c.conn.Publish(requestTopic, payload, c.qos, false); err != nil {
		return rpcResponse{}, fmt.Errorf("publishing driver request: %w", err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if resp.Status != statusOK {
			return rpcResponse{}, &StatusError{Method: req.Method, Status: resp.Status}
		}
		return resp, nil
	case <-timer.C:
		return rpcResponse{}, fmt.Errorf("%w: %s after %v", ErrTimeout, req.Method, c.timeout)
	case <-ctx.Done():
		return rpcResponse{}, fmt.Errorf("driver %s: %w", req.Method, ctx.Err())
	}
}

// handleResponse routes an incoming response to the waiting caller by the
// correlation ID carried in the topic suffix.
func (c *Client) handleResponse(topic string, payload []byte) error {
	id := strings.TrimPrefix(topic, responseTopicPrefix)

	c.mu.Lock()
	ch, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		// Late response after timeout; nothing is waiting.
		c.logger.Debug("dropping unmatched driver response", "id", id)
		return nil
	}

	var resp rpcResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("decoding driver response: %w", err)
	}

	select {
	case ch <- resp:
	default:
	}
	return nil
}
