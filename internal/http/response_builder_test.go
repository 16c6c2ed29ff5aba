package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/invoices/7").
		JSON(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Location"); got != "/api/invoices/7" {
		t.Errorf("Location = %q", got)
	}
	if strings.TrimSpace(w.Body.String()) != `{"id":7}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d with %d body bytes", w.Code, w.Body.Len())
	}
}

func TestResponseBuilder_Attachment(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Attachment("ledger-acme.pdf", "application/pdf", []byte("%PDF-1.3")).Write(w)

	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="ledger-acme.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := w.Header().Get("Content-Length"); got != "8" {
		t.Errorf("Content-Length = %q", got)
	}
	if w.Body.String() != "%PDF-1.3" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestResponseBuilder_EncodingFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(map[string]any{"bad": make(chan int)}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ResponseBuilder
		wantCode int
	}{
		{"BadRequest", BadRequestError("test"), http.StatusBadRequest},
		{"UnprocessableEntity", UnprocessableEntityError("test"), http.StatusUnprocessableEntity},
		{"InternalServer", InternalServerError("test"), http.StatusInternalServerError},
		{"NotFound", NotFoundError("test"), http.StatusNotFound},
		{"ServiceUnavailable", ServiceUnavailableError("test"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantCode {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantCode)
			}
			if strings.TrimSpace(w.Body.String()) != `{"error":"test"}` {
				t.Errorf("Body = %q", w.Body.String())
			}
		})
	}
}

func TestErrorResponse_EscapesMessage(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(http.StatusBadRequest, "<script>alert('xss')</script>").Write(w)

	if strings.Contains(w.Body.String(), "<script>") {
		t.Error("error body should escape markup")
	}
}
