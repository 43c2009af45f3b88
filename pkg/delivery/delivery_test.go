package delivery

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		want    Category
		wantErr bool
	}{
		{"error", CategoryError, false},
		{"transaction", CategoryTransaction, false},
		{"session", CategorySession, false},
		{"attachment", CategoryAttachment, false},
		{" Error ", CategoryError, false},
		{"event", CategoryError, false},
		{"sessions", CategorySession, false},
		{"all", "", true},
		{"profile", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownCategory) {
				t.Errorf("error = %v, want ErrUnknownCategory", err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestCategory_Trackable(t *testing.T) {
	if !CategoryAll.Trackable() {
		t.Error("all should be trackable")
	}
	if CategoryAll.Valid() {
		t.Error("all should not be a payload category")
	}
	if Category("profile").Trackable() {
		t.Error("profile should not be trackable")
	}
}

func TestNewJob_CopiesInput(t *testing.T) {
	body := []byte("payload")
	header := http.Header{"X-Test": []string{"a"}}

	job := NewJob(CategoryError, "https://example.com/api/1/envelope/", body, header)

	body[0] = 'X'
	header.Set("X-Test", "b")

	if string(job.Body) != "payload" {
		t.Errorf("Body = %q, want payload", job.Body)
	}
	if job.Header.Get("X-Test") != "a" {
		t.Errorf("Header = %q, want a", job.Header.Get("X-Test"))
	}
	if job.ID == "" {
		t.Error("ID is empty")
	}
	if job.Size() != 7 {
		t.Errorf("Size() = %d, want 7", job.Size())
	}

	other := NewJob(CategoryError, "", nil, nil)
	if other.ID == job.ID {
		t.Error("job IDs should be unique")
	}
	if other.Header != nil {
		t.Errorf("Header = %v, want nil", other.Header)
	}
}

func TestPending_SettleOnce(t *testing.T) {
	p := NewPending()

	if _, _, ok := p.Result(); ok {
		t.Fatal("new pending should be unsettled")
	}

	if !p.Settle(Result{Status: StatusSuccess}, nil) {
		t.Fatal("first Settle should win")
	}
	if p.Settle(Result{Status: StatusHTTPError}, ErrBufferFull) {
		t.Fatal("second Settle should be ignored")
	}

	res, err, ok := p.Result()
	if !ok {
		t.Fatal("pending should be settled")
	}
	if err != nil || res.Status != StatusSuccess {
		t.Errorf("Result() = %v, %v; want success, nil", res.Status, err)
	}
}

func TestPending_WaitContext(t *testing.T) {
	p := NewPending()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}

	go p.Settle(Result{Status: StatusSuccess}, nil)

	res, err := p.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !res.OK() {
		t.Errorf("Status = %v, want success", res.Status)
	}
}

func TestErrors_Is(t *testing.T) {
	rl := &RateLimitedError{Category: CategoryError, Until: time.Unix(100, 0)}
	if !errors.Is(rl, ErrRateLimited) {
		t.Error("RateLimitedError should match ErrRateLimited")
	}

	he := &HTTPError{Code: 429, Detail: "quota"}
	if !errors.Is(he, ErrHTTPStatus) {
		t.Error("HTTPError should match ErrHTTPStatus")
	}
	if he.Error() != "envship: HTTP Error (429): quota" {
		t.Errorf("Error() = %q", he.Error())
	}

	cause := errors.New("connection refused")
	te := &TransportError{Cause: cause}
	if !errors.Is(te, ErrTransport) || !errors.Is(te, cause) {
		t.Error("TransportError should match ErrTransport and its cause")
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusSuccess, "success"},
		{StatusRejectedLocally, "rejected_locally"},
		{StatusHTTPError, "http_error"},
		{StatusTransportError, "transport_error"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %s, want %s", tt.status, got, tt.want)
		}
	}
}
