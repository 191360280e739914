package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/typhfeng/projecttrack"
)

// Sender pushes a compact snapshot summary to an HTTP endpoint after
// every scan. The payload carries the rollups, not the full repo list.
type Sender struct {
	Method  string
	URL     string
	Headers map[string]string

	client *http.Client
}

type payload struct {
	GeneratedAt  string                               `json:"generated_at"`
	Owner        string                               `json:"owner"`
	Summary      projecttrack.Summary                 `json:"summary"`
	TrackSummary map[string]projecttrack.TrackSummary `json:"track_summary"`
}

func (s *Sender) Start() error {
	if s.URL == "" {
		return fmt.Errorf("webhook url is required")
	}
	if s.Method == "" {
		s.Method = http.MethodPost
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
	return nil
}

func (s *Sender) Stop() error {
	return nil
}

func (s *Sender) Send(dashboard *projecttrack.Dashboard) error {
	body, _ := json.Marshal(payload{
		GeneratedAt:  dashboard.GeneratedAt,
		Owner:        dashboard.Owner,
		Summary:      dashboard.Summary,
		TrackSummary: dashboard.TrackSummary,
	})
	req, err := http.NewRequest(s.Method, s.URL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(ioutil.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with %s", resp.Status)
	}
	return nil
}
