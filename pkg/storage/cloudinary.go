package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"semester-manager/backend/config"
)

const defaultBaseURL = "https://api.cloudinary.com/v1_1"

// ErrStorageDisabled 未配置 Cloudinary
var ErrStorageDisabled = errors.New("文件存储未配置")

// UploadResult Cloudinary 上传结果
type UploadResult struct {
	PublicID     string `json:"public_id"`
	SecureURL    string `json:"secure_url"`
	URL          string `json:"url"`
	ResourceType string `json:"resource_type"`
	Format       string `json:"format"`
	Bytes        int64  `json:"bytes"`
}

// Cloudinary 基于 REST API 的签名上传/删除客户端
type Cloudinary struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	baseURL   string
	http      *http.Client
	now       func() time.Time
}

// NewCloudinary 创建 Cloudinary 客户端，配置不完整时返回 nil
func NewCloudinary(cfg *config.StorageConfig) *Cloudinary {
	if !cfg.Enabled() {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Cloudinary{
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		folder:    cfg.Folder,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: timeout},
		now:       time.Now,
	}
}

// Upload 上传任意类型文件（resource_type=auto）
func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, filename string) (*UploadResult, error) {
	if c == nil {
		return nil, ErrStorageDisabled
	}

	params := c.signedParams(map[string]string{"folder": c.folder})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("cloudinary: 写入表单字段失败: %w", err)
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: 创建文件字段失败: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("cloudinary: 写入文件失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("cloudinary: 关闭表单失败: %w", err)
	}

	var result UploadResult
	if err := c.post(ctx, "auto/upload", w.FormDataContentType(), &buf, &result); err != nil {
		return nil, err
	}
	if result.ResourceType == "" {
		result.ResourceType = "raw"
	}
	return &result, nil
}

// Destroy 删除已上传文件
func (c *Cloudinary) Destroy(ctx context.Context, publicID, resourceType string) error {
	if c == nil {
		return ErrStorageDisabled
	}
	if publicID == "" {
		return nil
	}
	if resourceType == "" {
		resourceType = "image"
	}

	params := c.signedParams(map[string]string{"public_id": publicID})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("cloudinary: 写入表单字段失败: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cloudinary: 关闭表单失败: %w", err)
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := c.post(ctx, resourceType+"/destroy", w.FormDataContentType(), &buf, &result); err != nil {
		return err
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary: 删除失败: %s", result.Result)
	}
	return nil
}

func (c *Cloudinary) signedParams(extra map[string]string) map[string]string {
	params := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
		"api_key":   c.apiKey,
	}
	for k, v := range extra {
		if v != "" {
			params[k] = v
		}
	}
	params["signature"] = sign(params, c.apiSecret)
	return params
}

func (c *Cloudinary) post(ctx context.Context, endpoint, contentType string, body io.Reader, out interface{}) error {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.cloudName, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("cloudinary: 创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary: 请求失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cloudinary: 读取响应失败: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cloudinary: 请求失败 (%d): %s", resp.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cloudinary: 解析响应失败: %w", err)
	}
	return nil
}

// sign 计算 Cloudinary API 签名
// api_key、file、resource_type 不参与签名
func sign(params map[string]string, secret string) string {
	exclude := map[string]bool{"api_key": true, "file": true, "resource_type": true}

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		if !exclude[k] && v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}
	sort.Strings(pairs)

	h := sha1.New()
	h.Write([]byte(strings.Join(pairs, "&") + secret))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// PublicIDFromURL 从 Cloudinary 文件地址推导 public_id
// 例：https://res.cloudinary.com/demo/raw/upload/v1712/notes/ch1.pdf → notes/ch1
func PublicIDFromURL(fileURL string) string {
	idx := strings.Index(fileURL, "/upload/")
	if idx < 0 {
		return ""
	}
	rest := fileURL[idx+len("/upload/"):]

	segments := strings.Split(rest, "/")
	if len(segments) > 1 && isVersionSegment(segments[0]) {
		segments = segments[1:]
	}
	rest = strings.Join(segments, "/")

	return strings.TrimSuffix(rest, path.Ext(rest))
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.ParseInt(s[1:], 10, 64)
	return err == nil
}
