package uploads

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const defaultEndpointFormat = "https://api.cloudinary.com/v1_1/%s/image/upload"

// CloudinaryClient submits file bytes plus a logical folder name and
// relays back the stable public URL and dimensions. Nothing is stored or
// transformed locally.
type CloudinaryClient struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	endpoint   string
	httpClient *http.Client
}

func NewCloudinaryClient(cloudName, apiKey, apiSecret string) *CloudinaryClient {
	if strings.TrimSpace(cloudName) == "" || strings.TrimSpace(apiKey) == "" || strings.TrimSpace(apiSecret) == "" {
		return nil
	}
	return &CloudinaryClient{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		endpoint:   fmt.Sprintf(defaultEndpointFormat, cloudName),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *CloudinaryClient) Upload(ctx context.Context, filename string, data []byte, folder string) (UploadResult, error) {
	if c == nil {
		return UploadResult{}, errors.New("cloudinary client is nil")
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"timestamp": timestamp,
	}
	if folder != "" {
		params["folder"] = folder
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return UploadResult{}, fmt.Errorf("cloudinary build form: %w", err)
		}
	}
	if err := mw.WriteField("api_key", c.apiKey); err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary build form: %w", err)
	}
	if err := mw.WriteField("signature", c.sign(params)); err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary build form: %w", err)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary request failed: %w", err)
	}
	defer resp.Body.Close()

	var out cloudinaryResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary decode response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := strings.TrimSpace(out.Error.Message)
		if msg == "" {
			msg = resp.Status
		}
		return UploadResult{}, fmt.Errorf("cloudinary upload failed: status=%d message=%s", resp.StatusCode, msg)
	}

	url := out.SecureURL
	if url == "" {
		url = out.URL
	}
	if url == "" || out.PublicID == "" {
		return UploadResult{}, errors.New("cloudinary response missing url or public_id")
	}

	return UploadResult{
		URL:      url,
		PublicID: out.PublicID,
		Width:    out.Width,
		Height:   out.Height,
	}, nil
}

// sign implements the documented request signature: the parameters sorted
// by name, joined as query pairs, with the API secret appended, SHA-1 hashed.
func (c *CloudinaryClient) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}
