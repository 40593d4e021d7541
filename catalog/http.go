// Package catalog 提供租车目录的读接口实现：HTTP 客户端与静态 JSON 快照。
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/upsell/core"
)

// DefaultBaseURL 默认目录服务地址。
const DefaultBaseURL = "https://hackatum25.sixt.io"

// HTTPClient 通过租车 API 读取 booking 的 deals / 保障套餐 / 附加项。
// 每次调用都是一次同步读取，不做缓存与重试。
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPClient 创建客户端，timeout <= 0 时为 5s。
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Deals(ctx context.Context, bookingID string) ([]core.Deal, error) {
	var out struct {
		Deals []core.Deal `json:"deals"`
	}
	if err := c.get(ctx, bookingID, "vehicles", &out); err != nil {
		return nil, err
	}
	return out.Deals, nil
}

func (c *HTTPClient) Protections(ctx context.Context, bookingID string) ([]core.ProtectionPackage, error) {
	var out struct {
		ProtectionPackages []core.ProtectionPackage `json:"protectionPackages"`
	}
	if err := c.get(ctx, bookingID, "protections", &out); err != nil {
		return nil, err
	}
	return out.ProtectionPackages, nil
}

func (c *HTTPClient) Addons(ctx context.Context, bookingID string) ([]core.AddonGroup, error) {
	var out struct {
		Addons []core.AddonGroup `json:"addons"`
	}
	if err := c.get(ctx, bookingID, "addons", &out); err != nil {
		return nil, err
	}
	return out.Addons, nil
}

func (c *HTTPClient) get(ctx context.Context, bookingID, resource string, v any) error {
	if bookingID == "" {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "booking id is required")
	}
	endpoint := fmt.Sprintf("%s/api/booking/%s/%s", c.BaseURL, url.PathEscape(bookingID), resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return unavailable(resource, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return unavailable(resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound, fmt.Sprintf("booking %s not found", bookingID))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return unavailable(resource, fmt.Errorf("status=%d, body=%s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return unavailable(resource, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func unavailable(resource string, err error) error {
	return core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "fetch "+resource, err)
}
