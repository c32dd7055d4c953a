package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-directory/internal"
	"github.com/antonio-alexander/go-employee-directory/internal/cache"
	"github.com/antonio-alexander/go-employee-directory/internal/data"
	"github.com/antonio-alexander/go-employee-directory/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
)

type Client interface {
	EmployeeCreate(ctx context.Context, employee data.Employee) (string, error)
	EmployeeRead(ctx context.Context, id string) (*data.Employee, error)
	EmployeesSearch(ctx context.Context,
		search data.EmployeeSearch) ([]*data.Employee, error)
	EmployeeUpdate(ctx context.Context, id string,
		employeePartial data.EmployeePartial) error
	EmployeeDelete(ctx context.Context, id string) error
	EmployeesUpload(ctx context.Context, filename string,
		csvBytes []byte) (int, error)
	CacheClear(ctx context.Context) error
	CacheCountersRead(ctx context.Context) (*data.CacheCounters, error)
	CacheCountersClear(ctx context.Context) error
	TimersRead(ctx context.Context) (*data.Timers, error)
	TimersClear(ctx context.Context) error
}

type client struct {
	sync.RWMutex
	config struct {
		protocol      string
		address       string
		port          string
		timeout       int64
		retryMaxTries uint
		sslCaFile     string
		sslCrtFile    string
		sslKeyFile    string
		cacheDisabled bool
	}
	address string
	cache   cache.Cache
	utilities.Logger
	*http.Client
}

func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	c := &client{Client: &http.Client{}}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case cache.Cache:
			c.cache = p
		case utilities.Logger:
			c.Logger = p
		}
	}
	if c.Logger == nil {
		c.Logger = utilities.NewLogger()
	}
	return c
}

// doRequest retries transport failures with exponential backoff;
// a response with an error status is permanent and not retried.
func (c *client) doRequest(ctx context.Context, uri, method string, item any) ([]byte, error) {
	var contentLength int
	var contentType string
	var payload []byte

	switch d := item.(type) {
	case []byte:
		payload = d
		contentLength = len(d)
		contentType = "application/json"
	case *multipartPayload:
		payload = d.bytes
		contentLength = len(d.bytes)
		contentType = d.contentType
	case url.Values:
		switch method {
		default:
			uri = uri + "?" + d.Encode()
		case http.MethodPut, http.MethodPost, http.MethodPatch:
			payload = []byte(d.Encode())
			contentType = "application/x-www-form-urlencoded"
			contentLength = len(payload)
		}
	}
	operation := func() ([]byte, error) {
		var body io.Reader

		if payload != nil {
			body = bytes.NewBuffer(payload)
		}
		request, err := http.NewRequestWithContext(ctx, method, uri, body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		request.Header.Add("Content-Type", contentType)
		request.Header.Add("Content-Length", strconv.Itoa(contentLength))
		request.Header.Add("Correlation-Id", internal.CorrelationIdFromCtx(ctx))
		response, err := c.Do(request)
		if err != nil {
			return nil, err
		}
		bytes, err := io.ReadAll(response.Body)
		defer response.Body.Close()
		if err != nil {
			return nil, err
		}
		switch response.StatusCode {
		default:
			var e struct {
				Error string `json:"error"`
			}

			if err := json.Unmarshal(bytes, &e); err != nil || e.Error == "" {
				return nil, backoff.Permanent(errors.Errorf("status code: %d; %s",
					response.StatusCode, string(bytes)))
			}
			return nil, backoff.Permanent(errors.New(e.Error))
		case http.StatusOK, http.StatusCreated, http.StatusNoContent:
			return bytes, nil
		}
	}
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.config.retryMaxTries))
}

func (c *client) Configure(envs map[string]string) error {
	c.config.retryMaxTries = 1
	if address, ok := envs["CLIENT_ADDRESS"]; ok {
		c.config.address = address
	}
	if port, ok := envs["CLIENT_PORT"]; ok {
		c.config.port = port
	}
	if protocol, ok := envs["CLIENT_PROTOCOL"]; ok {
		c.config.protocol = protocol
	}
	if timeout, ok := envs["CLIENT_TIMEOUT"]; ok {
		i, err := strconv.ParseInt(timeout, 10, 64)
		if err != nil {
			return err
		}
		c.config.timeout = i
	}
	if retryMaxTries, ok := envs["CLIENT_RETRY_MAX_TRIES"]; ok {
		i, err := strconv.ParseUint(retryMaxTries, 10, 32)
		if err != nil {
			return err
		}
		if i > 0 {
			c.config.retryMaxTries = uint(i)
		}
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	if cacheDisabled, ok := envs["CACHE_DISABLED"]; ok {
		c.config.cacheDisabled, _ = strconv.ParseBool(cacheDisabled)
	}
	if c.cache == nil {
		c.config.cacheDisabled = true
	}
	return nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	switch c.config.protocol {
	default:
		return errors.Errorf("unsupported protocol: %s", c.config.protocol)
	case "http", "https":
		c.address = fmt.Sprintf("%s://%s", c.config.protocol,
			net.JoinHostPort(c.config.address, c.config.port))
	}
	if c.config.cacheDisabled {
		c.Info(ctx, "client: cache disabled")
	}
	c.Client.Timeout = time.Duration(c.config.timeout) * time.Second
	tlsConfig, err := getTlsConfig(c.config.sslCaFile, c.config.sslCrtFile,
		c.config.sslKeyFile)
	if err != nil {
		return err
	}
	c.Client.Transport = tlsConfig
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	return nil
}

func (c *client) EmployeeCreate(ctx context.Context, employee data.Employee) (string, error) {
	bytes, err := json.Marshal(&employee)
	if err != nil {
		return "", err
	}
	uri := c.address + data.RouteEmployees
	bytes, err = c.doRequest(ctx, uri, http.MethodPost, bytes)
	if err != nil {
		return "", err
	}
	response := &data.Response{}
	if err := json.Unmarshal(bytes, response); err != nil {
		return "", err
	}
	return response.Id, nil
}

func (c *client) EmployeeRead(ctx context.Context, id string) (*data.Employee, error) {
	if !c.config.cacheDisabled {
		employee, err := c.cache.EmployeeRead(ctx, id)
		if err == nil {
			return employee, nil
		}
		c.Trace(ctx, "error while reading employee (%s) from cache: %s", id, err)
	}
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	bytes, err := c.doRequest(ctx, uri, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	employee := &data.Employee{}
	if err := json.Unmarshal(bytes, employee); err != nil {
		return nil, err
	}
	if !c.config.cacheDisabled {
		if err := c.cache.EmployeesWrite(ctx, data.EmployeeSearch{}, employee); err != nil {
			c.Error(ctx, "error while writing employee (%s) to cache: %s", id, err)
		}
	}
	return employee, nil
}

func (c *client) EmployeesSearch(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	var results data.Results

	if !c.config.cacheDisabled {
		employees, err := c.cache.EmployeesRead(ctx, search)
		if err == nil {
			return employees, nil
		}
		c.Trace(ctx, "error while reading employees from cache: %s", err)
	}
	params := search.ToParams()
	uri := c.address + data.RouteEmployees
	bytes, err := c.doRequest(ctx, uri, http.MethodGet, params)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(bytes, &results); err != nil {
		return nil, err
	}
	if !c.config.cacheDisabled {
		if err := c.cache.EmployeesWrite(ctx, search, results.Results...); err != nil {
			c.Error(ctx, "error while writing employees to cache: %s", err)
		}
	}
	return results.Results, nil
}

func (c *client) EmployeeUpdate(ctx context.Context, id string, employeePartial data.EmployeePartial) error {
	bytes, err := json.Marshal(&employeePartial)
	if err != nil {
		return err
	}
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	if _, err := c.doRequest(ctx, uri, http.MethodPut, bytes); err != nil {
		return err
	}
	if !c.config.cacheDisabled {
		if err := c.cache.EmployeesDelete(ctx, id); err != nil {
			c.Error(ctx, "error while deleting employee (%s) from cache: %s", id, err)
		}
	}
	return nil
}

func (c *client) EmployeeDelete(ctx context.Context, id string) error {
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	if _, err := c.doRequest(ctx, uri, http.MethodDelete, nil); err != nil {
		return err
	}
	if !c.config.cacheDisabled {
		if err := c.cache.EmployeesDelete(ctx, id); err != nil {
			c.Error(ctx, "error while deleting employee (%s) from cache: %s", id, err)
		}
	}
	return nil
}

// EmployeesUpload posts a csv batch as a multipart form; the returned
// count is the number of rows the service persisted.
func (c *client) EmployeesUpload(ctx context.Context, filename string, csvBytes []byte) (int, error) {
	payload, err := newMultipartPayload(filename, csvBytes)
	if err != nil {
		return 0, err
	}
	uri := c.address + data.RouteEmployeesUpload
	bytes, err := c.doRequest(ctx, uri, http.MethodPost, payload)
	if err != nil {
		return 0, err
	}
	response := &data.Response{}
	if err := json.Unmarshal(bytes, response); err != nil {
		return 0, err
	}
	return response.Count, nil
}

func (c *client) CacheClear(ctx context.Context) error {
	uri := c.address + data.RouteCache
	if _, err := c.doRequest(ctx, uri, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}

func (c *client) CacheCountersRead(ctx context.Context) (*data.CacheCounters, error) {
	uri := c.address + data.RouteCacheCounters
	bytes, err := c.doRequest(ctx, uri, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	response := &data.CacheCounters{}
	if err := json.Unmarshal(bytes, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *client) CacheCountersClear(ctx context.Context) error {
	uri := c.address + data.RouteCacheCounters
	if _, err := c.doRequest(ctx, uri, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}

func (c *client) TimersRead(ctx context.Context) (*data.Timers, error) {
	uri := c.address + data.RouteTimers
	bytes, err := c.doRequest(ctx, uri, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	response := &data.Timers{}
	if err := json.Unmarshal(bytes, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *client) TimersClear(ctx context.Context) error {
	uri := c.address + data.RouteTimers
	if _, err := c.doRequest(ctx, uri, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}
