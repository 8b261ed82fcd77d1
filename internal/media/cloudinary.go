package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agrosoja/agrosoja/internal/clock"
	"github.com/agrosoja/agrosoja/internal/imgurl"
)

// DefaultCloudinaryURL is the Cloudinary REST API root.
const DefaultCloudinaryURL = "https://api.cloudinary.com"

// CloudinaryConfig configures the Cloudinary uploader. Uploads use an unsigned
// preset; deletion needs APIKey and APISecret and is skipped without them.
type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string
	BaseURL      string
}

// Cloudinary uploads images to Cloudinary.
type Cloudinary struct {
	cfg    CloudinaryConfig
	client *http.Client
	clock  clock.Clock
}

// NewCloudinary creates a Cloudinary uploader.
func NewCloudinary(cfg CloudinaryConfig, client *http.Client, c clock.Clock) *Cloudinary {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCloudinaryURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Cloudinary{cfg: cfg, client: client, clock: c}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Result    string `json:"result"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the image with the unsigned upload preset and returns its
// secure URL.
func (c *Cloudinary) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if err := mw.WriteField("upload_preset", c.cfg.UploadPreset); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload"), &body)
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("%w: response has no secure_url", ErrUpload)
	}
	slog.Info("image uploaded", "public_id", resp.PublicID, "bytes", len(data))
	return resp.SecureURL, nil
}

// Delete destroys the uploaded asset behind url using the signed API.
func (c *Cloudinary) Delete(ctx context.Context, rawURL string) error {
	publicID := imgurl.PublicID(rawURL)
	if publicID == "" {
		return nil
	}
	if c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		slog.Warn("cloudinary credentials not configured, image kept", "public_id", publicID)
		return nil
	}

	ts := strconv.FormatInt(c.clock.Now().Unix(), 10)
	form := url.Values{
		"public_id": {publicID},
		"timestamp": {ts},
		"api_key":   {c.cfg.APIKey},
		"signature": {Sign(map[string]string{"public_id": publicID, "timestamp": ts}, c.cfg.APISecret)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("destroy"), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	slog.Info("image destroyed", "public_id", publicID, "result", resp.Result)
	return nil
}

// Sign computes a Cloudinary API signature: the SHA-1 of the parameters
// sorted by name, joined as k=v with &, followed by the secret.
func Sign(params map[string]string, secret string) string {
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

func (c *Cloudinary) endpoint(action string) string {
	return fmt.Sprintf("%s/v1_1/%s/image/%s", c.cfg.BaseURL, url.PathEscape(c.cfg.CloudName), action)
}

func (c *Cloudinary) do(req *http.Request) (*cloudinaryResponse, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpload, err)
	}

	var out cloudinaryResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: status %d: invalid response", ErrUpload, resp.StatusCode)
	}
	if resp.StatusCode >= 300 || out.Error != nil {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpload, resp.StatusCode, msg)
	}
	return &out, nil
}
