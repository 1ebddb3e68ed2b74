// Package jsonbearer implements the REST transmitter for the government
// host's JSON API. Each dispatch is a two-step flow: obtain a bearer token
// from the credential's auth endpoint, then submit the document payload.
package jsonbearer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/customs-docflow/internal/config"
	"github.com/customs-docflow/internal/domain/credential"
	"github.com/customs-docflow/internal/domain/document"
	"github.com/customs-docflow/internal/domain/transmission"
	"github.com/customs-docflow/internal/transmitter"
)

const entryDateLayout = "2006-01-02"

// Transmitter sends documents over the JSON+bearer-token protocol
type Transmitter struct {
	logger           *slog.Logger
	httpClient       *http.Client
	tokens           *tokenCache
	defaultTimeout   time.Duration
	maxResponseBytes int
}

// NewTransmitter creates a JSON/Bearer transmitter. Per-request deadlines
// come from the credential configuration, falling back to cfg.DefaultTimeout;
// the client's own timeout is left alone so a credential may configure a
// longer deadline than the default.
func NewTransmitter(logger *slog.Logger, httpClient *http.Client, cfg *config.HostConfig) *Transmitter {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	var defaultTimeout time.Duration
	maxResponseBytes := 2048
	if cfg != nil {
		defaultTimeout = cfg.DefaultTimeout
		if cfg.MaxResponseBytes > 0 {
			maxResponseBytes = cfg.MaxResponseBytes
		}
	}
	return &Transmitter{
		logger:           logger.With("transmitter", "json_bearer"),
		httpClient:       httpClient,
		tokens:           newTokenCache(),
		defaultTimeout:   defaultTimeout,
		maxResponseBytes: maxResponseBytes,
	}
}

// Name returns the stable transmitter identifier
func (t *Transmitter) Name() string {
	return "json_bearer"
}

// ValidateCredential checks required fields without network access
func (t *Transmitter) ValidateCredential(cred *credential.Credential) error {
	var missing []string
	if cred.EndpointURL == "" {
		missing = append(missing, "endpoint_url")
	}
	if cred.Username == "" {
		missing = append(missing, "username")
	}
	if cred.Password == "" {
		missing = append(missing, "password")
	}
	if cred.Config.AuthEndpoint == "" {
		missing = append(missing, "auth_endpoint")
	}
	if len(missing) > 0 {
		return &transmitter.InvalidCredentialError{TransmitterName: t.Name(), MissingFields: missing}
	}
	return nil
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type submitRequest struct {
	RefNumber      string  `json:"ref_number"`
	DocumentCode   string  `json:"document_code"`
	WarehouseCode  string  `json:"warehouse_code"`
	TankNumber     string  `json:"tank_number"`
	TankCapacity   int64   `json:"tank_capacity"`
	MeasuredVolume int64   `json:"measured_volume"`
	Temperature    float64 `json:"temperature"`
	Density        float64 `json:"density"`
	EntryDate      string  `json:"entry_date"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send authenticates and submits the document, normalizing every outcome
// into a Result. A cached token is tried first; a 401 on submission
// invalidates it and retries once with a freshly issued token.
func (t *Transmitter) Send(ctx context.Context, doc *document.Document, cred *credential.Credential) *transmission.Result {
	if cred.ServiceType != credential.ServiceTypeJSONBearer {
		panic(fmt.Sprintf("jsonbearer transmitter invoked with %s credential %s", cred.ServiceType, cred.ID))
	}

	token, fromCache := t.tokens.get(cred.ID)
	if !fromCache {
		var authFailure *transmission.Result
		token, authFailure = t.authenticate(ctx, cred)
		if authFailure != nil {
			return authFailure
		}
	}

	result, unauthorized := t.submit(ctx, doc, cred, token)
	if unauthorized && fromCache {
		// Cached token went stale between cache read and submission
		t.logger.InfoContext(ctx, "Cached token rejected, re-authenticating", "credential_id", cred.ID)
		t.tokens.invalidate(cred.ID)

		freshToken, authFailure := t.authenticate(ctx, cred)
		if authFailure != nil {
			return authFailure
		}
		result, _ = t.submit(ctx, doc, cred, freshToken)
	}
	return result
}

// authenticate obtains a bearer token, caching it on success. The failure
// result short-circuits the dispatch; the submit endpoint is never called.
func (t *Transmitter) authenticate(ctx context.Context, cred *credential.Credential) (string, *transmission.Result) {
	reqBody, err := json.Marshal(authRequest{Username: cred.Username, Password: cred.Password})
	if err != nil {
		return "", transmission.Failure("failed to marshal auth request: "+err.Error(), transmission.CodeInternalError)
	}

	reqCtx, cancel := context.WithTimeout(ctx, cred.Config.EffectiveTimeout(t.defaultTimeout))
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, cred.Config.AuthEndpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", transmission.Failure("failed to create auth request: "+err.Error(), transmission.CodeInternalError)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.logger.WarnContext(ctx, "Auth transport failure", "credential_id", cred.ID, "error", err)
		return "", transmission.Failure("authentication failed: "+err.Error(), transmission.CodeTransportError)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", transmission.Failure("failed to read auth response: "+err.Error(), transmission.CodeTransportError)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		t.logger.WarnContext(ctx, "Auth endpoint returned non-2xx", "credential_id", cred.ID, "status_code", httpResp.StatusCode)
		result := transmission.Failure(
			fmt.Sprintf("authentication failed with status %d: %s", httpResp.StatusCode, truncate(string(respBody), t.maxResponseBytes)),
			strconv.Itoa(httpResp.StatusCode),
		)
		result.RawResponse = truncate(string(respBody), t.maxResponseBytes)
		return "", result
	}

	var auth authResponse
	if err := json.Unmarshal(respBody, &auth); err != nil || auth.AccessToken == "" {
		t.logger.WarnContext(ctx, "Auth response missing access token", "credential_id", cred.ID)
		result := transmission.Failure("authentication response did not contain an access token", transmission.CodeAuthFailed)
		result.RawResponse = truncate(string(respBody), t.maxResponseBytes)
		return "", result
	}

	if auth.ExpiresIn > 0 {
		t.tokens.put(cred.ID, auth.AccessToken, time.Duration(auth.ExpiresIn)*time.Second)
	}

	t.logger.DebugContext(ctx, "Authenticated against host", "credential_id", cred.ID, "expires_in", auth.ExpiresIn)
	return auth.AccessToken, nil
}

// submit posts the document payload. The second return value reports a 401,
// which the caller may resolve by re-authenticating.
func (t *Transmitter) submit(ctx context.Context, doc *document.Document, cred *credential.Credential, token string) (*transmission.Result, bool) {
	payload := submitRequest{
		RefNumber:      doc.RefNumber,
		DocumentCode:   doc.DocumentCode,
		WarehouseCode:  doc.WarehouseCode,
		TankNumber:     doc.TankNumber,
		TankCapacity:   doc.TankCapacity,
		MeasuredVolume: doc.MeasuredVolume,
		Temperature:    doc.Temperature,
		Density:        doc.Density,
		EntryDate:      doc.EntryDate.Format(entryDateLayout),
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return transmission.Failure("failed to marshal submit request: "+err.Error(), transmission.CodeInternalError), false
	}

	reqCtx, cancel := context.WithTimeout(ctx, cred.Config.EffectiveTimeout(t.defaultTimeout))
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, cred.EndpointURL, bytes.NewReader(reqBody))
	if err != nil {
		return transmission.Failure("failed to create submit request: "+err.Error(), transmission.CodeInternalError), false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	t.logger.DebugContext(ctx, "Submitting document", "url", cred.EndpointURL, "document_id", doc.ID)

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.logger.WarnContext(ctx, "Submit transport failure", "document_id", doc.ID, "error", err)
		return transmission.Failure(err.Error(), transmission.CodeTransportError), false
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return transmission.Failure(
			fmt.Sprintf("failed to read submit response (status %d): %v", httpResp.StatusCode, err),
			transmission.CodeTransportError,
		), false
	}

	raw := truncate(string(respBody), t.maxResponseBytes)

	if httpResp.StatusCode == http.StatusUnauthorized {
		result := transmission.Failure(
			fmt.Sprintf("submission rejected with status %d: %s", httpResp.StatusCode, raw),
			strconv.Itoa(httpResp.StatusCode),
		)
		result.RawResponse = raw
		return result, true
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		t.logger.WarnContext(ctx, "Submit endpoint returned non-2xx", "document_id", doc.ID, "status_code", httpResp.StatusCode)
		result := transmission.Failure(raw, strconv.Itoa(httpResp.StatusCode))
		result.RawResponse = raw
		return result, false
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		// 2xx with an unparseable body: record the HTTP status as the error
		// code so the host's acceptance status is preserved in the log.
		t.logger.WarnContext(ctx, "Submit response is not JSON", "document_id", doc.ID, "error", err)
		result := transmission.Failure(raw, strconv.Itoa(httpResp.StatusCode))
		result.RawResponse = raw
		return result, false
	}

	var resp submitResponse
	// Already known to be valid JSON
	_ = json.Unmarshal(respBody, &resp)

	t.logger.InfoContext(ctx, "Submission result received", "document_id", doc.ID, "success", resp.Success, "message", resp.Message)
	return &transmission.Result{
		Success:      resp.Success,
		Message:      resp.Message,
		ResponseData: parsed,
		RawResponse:  raw,
	}, false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
