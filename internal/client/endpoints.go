package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path"
	"strconv"

	"github.com/gabe/rcbt/internal/models"
)

// GenerateResult is the outcome of a global generation request: either a
// report (ReportPath + Metrics) or a validation detour
type GenerateResult struct {
	ReportPath string
	Metrics    models.Metrics
	Detour     *models.Detour
}

// SessionData is the server's view of the current session
type SessionData struct {
	HasFiles bool
	Files    models.UploadedFileSet
}

// ServerStatus is the answer of GET /status
type ServerStatus struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Upload sends the four selected files in one multipart request
func (c *Client) Upload(ctx context.Context, sel models.Selection) (models.UploadedFileSet, error) {
	const op = "upload"

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(mw, sel))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/upload", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Files map[string]string `json:"files"`
	}
	if err := c.do(c.upload, req, op, &out); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	return models.FileSetFromWire(out.Files), nil
}

func writeMultipart(mw *multipart.Writer, sel models.Selection) error {
	for _, slot := range models.Slots {
		f, ok := sel[slot]
		if !ok {
			return fmt.Errorf("no file selected for %s", slot.FieldName())
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
			"name":     slot.FieldName(),
			"filename": f.Name,
		}))
		h.Set("Content-Type", f.MediaType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		src, err := os.Open(f.Path)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, src)
		src.Close()
		if err != nil {
			return err
		}
	}
	return mw.Close()
}

// GenerateReport asks the server for a global report over the uploaded files
func (c *Client) GenerateReport(ctx context.Context, files models.UploadedFileSet) (*GenerateResult, error) {
	var out struct {
		ReportPath              string         `json:"report_path"`
		Metrics                 models.Metrics `json:"metrics"`
		RequiresValidation      bool           `json:"requires_validation"`
		InconsistenciesDetected int            `json:"inconsistencies_detected"`
		Message                 string         `json:"message"`
		RedirectTo              string         `json:"redirect_to"`
	}
	body := map[string]any{"files": files.Wire()}
	if err := c.postJSON(ctx, "generate report", "/generate_report", body, &out); err != nil {
		return nil, err
	}
	if out.RequiresValidation {
		return &GenerateResult{Detour: &models.Detour{
			Inconsistencies: out.InconsistenciesDetected,
			Message:         out.Message,
			RedirectTo:      out.RedirectTo,
		}}, nil
	}
	return &GenerateResult{ReportPath: out.ReportPath, Metrics: out.Metrics}, nil
}

// AvailableData fetches the sites and collaborators selectable for individual reports
func (c *Client) AvailableData(ctx context.Context, files models.UploadedFileSet) (*models.AvailableData, error) {
	var out struct {
		Data models.AvailableData `json:"data"`
	}
	body := map[string]any{"files": files.Wire()}
	if err := c.postJSON(ctx, "available data", "/get_available_data", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// GenerateIndividual generates a report filtered to one site or collaborator
func (c *Client) GenerateIndividual(ctx context.Context, files models.UploadedFileSet, kind models.TargetType, target string) (string, error) {
	var out struct {
		ReportPath string `json:"report_path"`
	}
	body := map[string]any{
		"files":         files.Wire(),
		"report_type":   string(kind),
		"report_target": target,
	}
	if err := c.postJSON(ctx, "individual report", "/generate_individual_report", body, &out); err != nil {
		return "", err
	}
	return out.ReportPath, nil
}

// CheckSession asks whether the server session already holds uploaded files
func (c *Client) CheckSession(ctx context.Context) (*SessionData, error) {
	var out struct {
		HasFiles bool              `json:"has_files"`
		Files    map[string]string `json:"files"`
	}
	if err := c.getJSON(ctx, "check session", "/check_session_data", &out); err != nil {
		return nil, err
	}
	data := &SessionData{HasFiles: out.HasFiles}
	if out.HasFiles {
		data.Files = models.FileSetFromWire(out.Files)
	}
	return data, nil
}

// History lists every report record, newest first as sent by the server
func (c *Client) History(ctx context.Context) ([]models.ReportRecord, error) {
	var out struct {
		History []models.ReportRecord `json:"history"`
	}
	if err := c.getJSON(ctx, "history", "/reports_history", &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// DeleteHistory removes one history record by id
func (c *Client) DeleteHistory(ctx context.Context, id int64) error {
	const op = "delete history"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/delete_history/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.do(c.http, req, op, nil)
}

// Download streams a generated report into w and returns the server's file name
func (c *Client) Download(ctx context.Context, reportPath string, w io.Writer) (string, error) {
	const op = "download"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(reportPath), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.send(c.upload, req, op)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	name := path.Base(reportPath)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}

	// A JSON body on a download route is an error envelope, not a report
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt == "application/json" {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", &TransportError{Op: op, Err: err}
		}
		if err := decodeEnvelope(op, data, nil); err != nil {
			return "", err
		}
		return "", &ServerError{Op: op, Message: "unexpected JSON response instead of a report"}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	return name, nil
}

// Status probes GET /status, which answers without a success envelope
func (c *Client) Status(ctx context.Context) (*ServerStatus, error) {
	const op = "status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.send(c.http, req, op)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out ServerStatus
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("invalid JSON response: %w", err)}
	}
	return &out, nil
}
