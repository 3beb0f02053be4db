package editable

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/haierkeys/site-text-service/internal/dto"

	"github.com/bytedance/sonic"
)

// APIError non-2xx response decoded from the error body
// APIError 非 2xx 响应
type APIError struct {
	Status  int      `json:"-"`
	Code    int      `json:"code"`
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
	TraceID string   `json:"traceId,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d code %d: %s", e.Status, e.Code, e.Message)
}

// HTTPClient implements ContentAPI against the HTTP API
// HTTPClient 基于 HTTP API 的 ContentAPI 实现
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewHTTPClient baseURL 如 http://127.0.0.1:9100，httpClient 为空时使用 http.DefaultClient
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetToken 设置会话 Token，空字符串表示匿名
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) Resolve(ctx context.Context, id string) (*dto.ContentResolveResponse, error) {
	out := &dto.ContentResolveResponse{}
	if err := c.do(ctx, http.MethodGet, "/api/content/text/"+url.PathEscape(id), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Put(ctx context.Context, params *dto.TextPutRequest) (*dto.TextPutResponse, error) {
	out := &dto.TextPutResponse{}
	if err := c.do(ctx, http.MethodPut, "/api/admin/content/text", params, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) History(ctx context.Context, id string, limit int) (*dto.TextHistoryResponse, error) {
	path := "/api/admin/content/text/history/" + url.PathEscape(id)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	out := &dto.TextHistoryResponse{}
	if err := c.do(ctx, http.MethodGet, path, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login 登录成功后保存 Token
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*dto.AuthLoginResponse, error) {
	out := &dto.AuthLoginResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/admin/auth", &dto.AuthLoginRequest{Email: email, Password: password}, out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return out, nil
}

func (c *HTTPClient) Status(ctx context.Context) (*dto.AuthStatusResponse, error) {
	out := &dto.AuthStatusResponse{}
	if err := c.do(ctx, http.MethodGet, "/api/admin/auth", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/api/admin/auth", nil, &dto.SuccessResponse{}); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = sonic.Unmarshal(data, apiErr)
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return sonic.Unmarshal(data, out)
}
