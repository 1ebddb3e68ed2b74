// Package soapxml implements the legacy SOAP/XML transmitter for the
// government host's ASMX endpoint. One POST per dispatch; the response is a
// SOAP envelope whose result element text carries the host's confirmation.
package soapxml

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/customs-docflow/internal/config"
	"github.com/customs-docflow/internal/domain/credential"
	"github.com/customs-docflow/internal/domain/document"
	"github.com/customs-docflow/internal/domain/transmission"
	"github.com/customs-docflow/internal/transmitter"
)

const (
	soapEnvelopeNS = "http://www.w3.org/2003/05/soap-envelope"
	serviceNS      = "http://tempuri.org/"
	contentType    = "application/soap+xml; charset=utf-8"

	resultElementSuffix = "Result"
	entryDateLayout     = "2006-01-02"
)

// Failure markers the host embeds in an HTTP 200 response text. Any 200
// without one of these is a confirmed submission.
var failureMarkers = []string{"gagal", "error", "reject"}

// Transmitter sends documents as SOAP 1.2 envelopes
type Transmitter struct {
	logger           *slog.Logger
	httpClient       *http.Client
	defaultTimeout   time.Duration
	maxResponseBytes int
}

// NewTransmitter creates a SOAP/XML transmitter. Per-request deadlines come
// from the credential configuration, falling back to cfg.DefaultTimeout; the
// client's own timeout is left alone so a credential may configure a longer
// deadline than the default.
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
		logger:           logger.With("transmitter", "soap_xml"),
		httpClient:       httpClient,
		defaultTimeout:   defaultTimeout,
		maxResponseBytes: maxResponseBytes,
	}
}

// Name returns the stable transmitter identifier
func (t *Transmitter) Name() string {
	return "soap_xml"
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
	if len(missing) > 0 {
		return &transmitter.InvalidCredentialError{TransmitterName: t.Name(), MissingFields: missing}
	}
	return nil
}

// Send submits the document and normalizes every outcome into a Result
func (t *Transmitter) Send(ctx context.Context, doc *document.Document, cred *credential.Credential) *transmission.Result {
	if cred.ServiceType != credential.ServiceTypeSOAPXML {
		panic(fmt.Sprintf("soapxml transmitter invoked with %s credential %s", cred.ServiceType, cred.ID))
	}

	envelope, err := buildEnvelope(doc, cred)
	if err != nil {
		t.logger.ErrorContext(ctx, "Failed to build SOAP envelope", "document_id", doc.ID, "error", err)
		return transmission.Failure("failed to build SOAP envelope: "+err.Error(), transmission.CodeInternalError)
	}

	reqCtx, cancel := context.WithTimeout(ctx, cred.Config.EffectiveTimeout(t.defaultTimeout))
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, cred.EndpointURL, bytes.NewReader(envelope))
	if err != nil {
		t.logger.ErrorContext(ctx, "Failed to create SOAP HTTP request", "document_id", doc.ID, "error", err)
		return transmission.Failure("failed to create HTTP request: "+err.Error(), transmission.CodeInternalError)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.SetBasicAuth(cred.Username, cred.Password)

	t.logger.DebugContext(ctx, "Sending SOAP request", "url", cred.EndpointURL, "document_id", doc.ID)

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.logger.WarnContext(ctx, "SOAP transport failure", "document_id", doc.ID, "error", err)
		return transmission.Failure(err.Error(), transmission.CodeTransportError)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		t.logger.WarnContext(ctx, "Failed to read SOAP response body", "document_id", doc.ID, "status_code", httpResp.StatusCode, "error", err)
		return transmission.Failure(
			fmt.Sprintf("failed to read response body (status %d): %v", httpResp.StatusCode, err),
			transmission.CodeTransportError,
		)
	}

	if httpResp.StatusCode != http.StatusOK {
		t.logger.WarnContext(ctx, "SOAP host returned non-200", "document_id", doc.ID, "status_code", httpResp.StatusCode)
		truncated := truncate(string(respBody), t.maxResponseBytes)
		result := transmission.Failure(truncated, strconv.Itoa(httpResp.StatusCode))
		result.RawResponse = truncated
		return result
	}

	return t.parseResponse(ctx, doc, respBody)
}

// parseResponse extracts the result element text from a 200 response
func (t *Transmitter) parseResponse(ctx context.Context, doc *document.Document, respBody []byte) *transmission.Result {
	raw := truncate(string(respBody), t.maxResponseBytes)

	respDoc := etree.NewDocument()
	if err := respDoc.ReadFromBytes(respBody); err != nil {
		t.logger.WarnContext(ctx, "SOAP response is not well-formed XML", "document_id", doc.ID, "error", err)
		result := transmission.Failure("response is not well-formed XML: "+err.Error(), transmission.CodeInternalError)
		result.RawResponse = raw
		return result
	}

	resultElem := findResultElement(respDoc.Root())
	if resultElem == nil {
		t.logger.WarnContext(ctx, "SOAP response missing result element", "document_id", doc.ID)
		result := transmission.Failure("response does not contain a *"+resultElementSuffix+" element", transmission.CodeInternalError)
		result.RawResponse = raw
		return result
	}

	message := strings.TrimSpace(resultElem.Text())

	// A 200 is a success unless the host's known failure markers appear in
	// the result text.
	lowered := strings.ToLower(message)
	for _, marker := range failureMarkers {
		if strings.Contains(lowered, marker) {
			t.logger.WarnContext(ctx, "Host rejected submission", "document_id", doc.ID, "message", message)
			result := transmission.Failure(message, transmission.CodeHostRejected)
			result.RawResponse = raw
			return result
		}
	}

	t.logger.InfoContext(ctx, "SOAP submission confirmed", "document_id", doc.ID, "message", message)
	return &transmission.Result{
		Success:     true,
		Message:     message,
		RawResponse: raw,
		ResponseData: map[string]interface{}{
			"result_text": message,
		},
	}
}

// findResultElement walks the tree for the first element whose local name
// carries the ASMX <Operation>Result suffix. Matching ignores namespace
// prefixes; the host has been observed using differing prefixes and operation
// names across environments.
func findResultElement(el *etree.Element) *etree.Element {
	if el == nil {
		return nil
	}
	if strings.HasSuffix(el.Tag, resultElementSuffix) {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findResultElement(child); found != nil {
			return found
		}
	}
	return nil
}

// buildEnvelope renders the document as the host's KirimCoCoTangki SOAP body.
// The field layout is fixed by the ASMX service schema.
func buildEnvelope(doc *document.Document, cred *credential.Credential) ([]byte, error) {
	envDoc := etree.NewDocument()
	envDoc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	envelope := envDoc.CreateElement("soap12:Envelope")
	envelope.CreateAttr("xmlns:soap12", soapEnvelopeNS)

	body := envelope.CreateElement("soap12:Body")
	op := body.CreateElement("KirimCoCoTangki")
	op.CreateAttr("xmlns", serviceNS)

	op.CreateElement("Username").SetText(cred.Username)
	op.CreateElement("Password").SetText(cred.Password)
	op.CreateElement("NomorDokumen").SetText(doc.RefNumber)
	op.CreateElement("KodeDokumen").SetText(doc.DocumentCode)
	op.CreateElement("KodeGudang").SetText(doc.WarehouseCode)
	op.CreateElement("NomorTangki").SetText(doc.TankNumber)
	op.CreateElement("KapasitasTangki").SetText(strconv.FormatInt(doc.TankCapacity, 10))
	op.CreateElement("VolumeTerukur").SetText(strconv.FormatInt(doc.MeasuredVolume, 10))
	op.CreateElement("Suhu").SetText(strconv.FormatFloat(doc.Temperature, 'f', 2, 64))
	op.CreateElement("Densitas").SetText(strconv.FormatFloat(doc.Density, 'f', 4, 64))
	op.CreateElement("TanggalEntri").SetText(doc.EntryDate.Format(entryDateLayout))

	return envDoc.WriteToBytes()
}

// truncate clips s to at most max bytes, backing the cut up so a multi-byte
// rune is never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
