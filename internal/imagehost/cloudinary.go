package imagehost

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Apie237/mern-chatapp/pkg/httpclient"
)

// DefaultCloudinaryBaseURL is the Cloudinary upload API root.
const DefaultCloudinaryBaseURL = "https://api.cloudinary.com"

// CloudinaryConfig holds credentials for signed Cloudinary uploads.
type CloudinaryConfig struct {
	BaseURL   string
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// CloudinaryUploader performs signed uploads to Cloudinary's image endpoint.
type CloudinaryUploader struct {
	cfg    CloudinaryConfig
	client *httpclient.CircuitBreakerClient
	now    func() time.Time
}

// NewCloudinaryUploader creates an uploader that sends requests through a
// retrying client guarded by a circuit breaker.
func NewCloudinaryUploader(cfg CloudinaryConfig, httpCfg httpclient.Config, logger *slog.Logger) (*CloudinaryUploader, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary cloud name, api key and api secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCloudinaryBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("cloudinary"),
		logger,
	)
	return &CloudinaryUploader{cfg: cfg, client: client, now: time.Now}, nil
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends data to Cloudinary and returns the hosted image's secure URL.
func (c *CloudinaryUploader) Upload(ctx context.Context, data string) (*UploadResult, error) {
	timestamp := strconv.FormatInt(c.now().Unix(), 10)

	params := map[string]string{"timestamp": timestamp}
	if c.cfg.Folder != "" {
		params["folder"] = c.cfg.Folder
	}

	form := url.Values{}
	form.Set("file", data)
	form.Set("api_key", c.cfg.APIKey)
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("signature", sign(params, c.cfg.APISecret))

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", c.cfg.BaseURL, url.PathEscape(c.cfg.CloudName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &UploadError{Err: fmt.Errorf("create upload request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		var srvErr *httpclient.ServerError
		if errors.As(err, &srvErr) {
			return nil, &UploadError{Status: srvErr.Status, Err: err}
		}
		return nil, &UploadError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	var body cloudinaryResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body)

	if httpclient.IsClientError(resp.StatusCode) {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && body.Error != nil && body.Error.Message != "" {
			msg = body.Error.Message
		}
		return nil, &UploadError{ClientCaused: true, Status: resp.StatusCode, Err: errors.New(msg)}
	}
	if decodeErr != nil {
		return nil, &UploadError{Status: resp.StatusCode, Err: fmt.Errorf("decode upload response: %w", decodeErr)}
	}
	if body.SecureURL == "" {
		return nil, &UploadError{Status: resp.StatusCode, Err: errors.New("upload response missing secure_url")}
	}

	return &UploadResult{SecureURL: body.SecureURL, PublicID: body.PublicID}, nil
}

// sign computes Cloudinary's request signature: the sorted key=value pairs
// joined by '&', followed by the API secret, hashed with SHA-1.
func sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
