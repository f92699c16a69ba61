// Package linkcheck probes the URLs published in the manifest.
package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/manifest"
)

// UserAgent identifies probe requests
const UserAgent = "CSP2-Plugin-Repository-LinkChecker/1.0"

// Defaults for Options
const (
	DefaultTimeout = 10 * time.Second
	DefaultDelay   = 500 * time.Millisecond
)

// Probe kinds
const (
	KindDownload   = "download"
	KindRepository = "repository"
	KindHomepage   = "homepage"
	KindIcon       = "icon"
)

// Probe is one URL to check
type Probe struct {
	Kind string
	URL  string
}

// Result is the outcome of one probe
type Result struct {
	PluginID string
	Kind     string
	URL      string
	OK       bool
	Status   int
	Err      string
	Duration time.Duration
}

// Describe renders the failure cause, or "OK"
func (r Result) Describe() string {
	switch {
	case r.OK:
		return "OK"
	case r.Err != "":
		return "Error: " + r.Err
	default:
		return fmt.Sprintf("Status: %d", r.Status)
	}
}

// Summary aggregates all probe results of a run
type Summary struct {
	Total   int
	Failed  int
	Results []Result
}

// Passed returns the number of successful probes
func (s *Summary) Passed() int {
	return s.Total - s.Failed
}

// OK reports whether every probe succeeded
func (s *Summary) OK() bool {
	return s.Failed == 0
}

func (s *Summary) add(results []Result) {
	for _, r := range results {
		s.Total++
		if !r.OK {
			s.Failed++
		}
	}
	s.Results = append(s.Results, results...)
}

// Options configures a Checker
type Options struct {
	// Timeout bounds each probe
	Timeout time.Duration
	// Delay separates consecutive plugins
	Delay time.Duration
	// Client overrides the HTTP client, mainly for tests
	Client *http.Client
	// OnPlugin is called after each plugin's probes complete
	OnPlugin func(entry domain.PluginEntry, results []Result)
}

// Checker issues HEAD requests against manifest URLs
type Checker struct {
	client   *http.Client
	timeout  time.Duration
	delay    time.Duration
	onPlugin func(domain.PluginEntry, []Result)
}

// NewChecker creates a Checker
func NewChecker(opts Options) *Checker {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Checker{
		client:   client,
		timeout:  opts.Timeout,
		delay:    opts.Delay,
		onPlugin: opts.OnPlugin,
	}
}

// ProbesFor lists the URLs to check for an entry. The homepage is skipped
// when it points at github.com since the repository probe covers it.
func ProbesFor(entry domain.PluginEntry) []Probe {
	var probes []Probe

	if entry.Download.URL != "" {
		probes = append(probes, Probe{Kind: KindDownload, URL: entry.Download.URL})
	}
	if entry.Repository.Owner != "" && entry.Repository.Repo != "" {
		probes = append(probes, Probe{Kind: KindRepository, URL: entry.Repository.URL()})
	}
	if home := entry.Links.Homepage; home != "" && !strings.Contains(home, "github.com") {
		probes = append(probes, Probe{Kind: KindHomepage, URL: home})
	}
	if entry.Media.Icon != "" {
		probes = append(probes, Probe{Kind: KindIcon, URL: entry.Media.Icon})
	}

	return probes
}

// CheckFile reads the manifest at path and checks it. A missing or
// unparseable manifest is returned as an error.
func (c *Checker) CheckFile(ctx context.Context, path string) (*Summary, error) {
	m, err := manifest.Read(path)
	if err != nil {
		return nil, err
	}
	return c.CheckManifest(ctx, m)
}

// CheckManifest probes every plugin in order, pausing between plugins.
// Probe failures are recorded in the Summary; the error is reserved for
// cancellation.
func (c *Checker) CheckManifest(ctx context.Context, m *domain.Manifest) (*Summary, error) {
	summary := &Summary{}

	log.Info().Int("plugins", len(m.Plugins)).Msg("Checking links")

	for i, entry := range m.Plugins {
		if i > 0 && c.delay > 0 {
			timer := time.NewTimer(c.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		results, err := c.CheckPlugin(ctx, entry)
		if err != nil {
			return nil, err
		}
		summary.add(results)

		if c.onPlugin != nil {
			c.onPlugin(entry, results)
		}
	}

	log.Info().
		Int("total", summary.Total).
		Int("failed", summary.Failed).
		Msg("Link check finished")

	return summary, nil
}

// CheckPlugin runs all probes of one entry concurrently and waits for every
// one of them. Results keep the order of ProbesFor.
func (c *Checker) CheckPlugin(ctx context.Context, entry domain.PluginEntry) ([]Result, error) {
	probes := ProbesFor(entry)
	results := make([]Result, len(probes))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, probe := range probes {
		eg.Go(func() error {
			results[i] = c.CheckURL(egCtx, probe)
			results[i].PluginID = entry.ID
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// CheckURL issues a single HEAD request. Redirects are followed; a 2xx or a
// 3xx the client cannot follow (304, 300, a redirect without Location) is a
// success.
func (c *Checker) CheckURL(ctx context.Context, probe Probe) Result {
	result := Result{Kind: probe.Kind, URL: probe.URL}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probe.URL, nil)
	if err != nil {
		result.Err = fmt.Sprintf("invalid URL: %v", err)
		return c.logged(result, start)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.Err = fmt.Sprintf("timed out after %s", c.timeout)
		} else {
			result.Err = err.Error()
		}
		return c.logged(result, start)
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	result.OK = resp.StatusCode >= 200 && resp.StatusCode < 400
	return c.logged(result, start)
}

func (c *Checker) logged(result Result, start time.Time) Result {
	result.Duration = time.Since(start)
	event := log.Debug()
	if !result.OK {
		event = log.Warn()
	}
	event.
		Str("kind", result.Kind).
		Str("url", result.URL).
		Int("status", result.Status).
		Dur("duration", result.Duration).
		Msg(result.Describe())
	return result
}
