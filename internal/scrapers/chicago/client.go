// client.go contains the logic for talking to the results site, it knows how to
// submit the site's forms and what a page links to, not what the pages mean.

package chicago

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chicago-openelex/internal/components/assert"
	"chicago-openelex/internal/components/pagecache"
	"chicago-openelex/internal/components/telemetry"
	"chicago-openelex/pkg/htmlutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("chicago-openelex/internal/scrapers/chicago")

const (
	report_client_fetch  = "client.fetch"
	report_client_submit = "client.submit"
	report_client_cache  = "client.cache"
)

const DEFAULT_BASE_URL = "http://www.chicagoelections.com/en/election3.asp"

type ClientConfig struct {
	RequestsPerMinute int `json:"requests_per_minute"`
	RetryAttempts     int `json:"retry_attempts"`
	RetryWaitSeconds  int `json:"retry_wait_seconds"`
	TimeoutSeconds    int `json:"timeout_seconds"`
	// the transport fingerprinting is only needed against the live site
	DisableCloudflareBypass bool `json:"disable_cloudflare_bypass"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		RequestsPerMinute: 100,
		RetryAttempts:     3,
		RetryWaitSeconds:  2,
		TimeoutSeconds:    30,
	}
}

// PageCache is satisfied by pagecache.Cache.
type PageCache interface {
	Get(ctx context.Context, key string) (pagecache.Page, error)
	Put(ctx context.Context, key string, page pagecache.Page) error
}

// FormState is the selection submitted to advance one level in the site's forms.
type FormState struct {
	// value of the selected <option>, sent as D3
	Value string
	// the name of the field that flags a submission, "flag1" on the election
	// form and "flag" on the contest form
	Flag string
	// label of the submit button, sent as B1
	Button string
}

func (f FormState) Values() url.Values {
	return url.Values{
		"D3":   {f.Value},
		f.Flag: {"1"},
		"B1":   {f.Button},
	}
}

func ElectionForm(value string) FormState {
	return FormState{Value: value, Flag: "flag1", Button: "View"}
}

func ContestForm(value string) FormState {
	return FormState{Value: value, Flag: "flag", Button: "  View The Results   "}
}

// FormPage is what a page offers to continue with.
type FormPage struct {
	// the url the page was served from, the page's own form posts back here
	Url     *url.URL
	Options []string
	Links   []htmlutil.Anchor
}

type Client struct {
	http  *resty.Client
	cache PageCache
	tel   telemetry.API
}

// NewClient creates a client, `cache` may be nil to always hit the network.
func NewClient(config ClientConfig, cache PageCache, tel telemetry.API) *Client {
	assert.NotNil(tel)
	assert.Positive(config.RequestsPerMinute)

	tel = telemetry.NewScopedAPI("chicago_scraper", tel)

	httpClient := resty.New()
	if !config.DisableCloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetTimeout(time.Second * time.Duration(config.TimeoutSeconds))

	retryWait := time.Second * time.Duration(config.RetryWaitSeconds)
	httpClient.SetRetryCount(config.RetryAttempts)
	httpClient.SetRetryWaitTime(retryWait)
	httpClient.SetRetryMaxWaitTime(retryWait)
	httpClient.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || res.StatusCode() >= 500
	})

	// burst of 1 keeps requests evenly spaced over the minute
	rateLimiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)

	return &Client{
		http:  httpClient,
		cache: cache,
		tel:   tel,
	}
}

// Fetch performs a GET (when `form` is nil) or a form POST, going through the
// page cache first.
func (c *Client) Fetch(ctx context.Context, endpoint string, form url.Values) (pagecache.Page, error) {
	method := http.MethodGet
	if form != nil {
		method = http.MethodPost
	}

	ctx, span := tracer.Start(ctx, "client:fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("custom.method", method),
		attribute.String("custom.url", endpoint),
	)

	key := pagecache.Key(method, endpoint, form)
	if c.cache != nil {
		page, err := c.cache.Get(ctx, key)
		if err == nil {
			span.SetAttributes(attribute.Bool("custom.cached", true))
			return page, nil
		}
		if !errors.Is(err, pagecache.ErrPageNotFound) {
			c.tel.ReportWarning(report_client_cache, fmt.Errorf("get: %w", err), key)
		}
	}

	req := c.http.R().SetContext(ctx)
	var res *resty.Response
	var err error
	if form != nil {
		res, err = req.SetFormDataFromValues(form).Post(endpoint)
	} else {
		res, err = req.Get(endpoint)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return pagecache.Page{}, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	if res.IsError() {
		err := fmt.Errorf("%s %s: unexpected status: %s", method, endpoint, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return pagecache.Page{}, err
	}

	finalUrl := endpoint
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalUrl = res.RawResponse.Request.URL.String()
	}
	page := pagecache.Page{
		FinalUrl:  finalUrl,
		Body:      res.Body(),
		CreatedAt: time.Now(),
	}

	if c.cache != nil {
		err = c.cache.Put(ctx, key, page)
		if err != nil {
			c.tel.ReportWarning(report_client_cache, fmt.Errorf("put: %w", err), key)
		}
	}
	return page, nil
}

// Submit takes one step through the site: it loads `pageUrl` (submitting
// `form` to it when non-nil) and returns the options and links of the
// resulting page.
func (c *Client) Submit(ctx context.Context, pageUrl string, form *FormState) (FormPage, error) {
	var values url.Values
	if form != nil {
		values = form.Values()
	}

	page, err := c.Fetch(ctx, pageUrl, values)
	if err != nil {
		c.tel.ReportBroken(report_client_submit, err, pageUrl, formatForm(values))
		return FormPage{}, err
	}

	finalUrl, err := url.Parse(page.FinalUrl)
	if err != nil {
		c.tel.ReportBroken(report_client_submit, fmt.Errorf("parse final url: %w", err), page.FinalUrl)
		return FormPage{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		c.tel.ReportBroken(report_client_submit, fmt.Errorf("parse: %w", err), pageUrl, formatForm(values))
		return FormPage{}, err
	}

	return FormPage{
		Url:     finalUrl,
		Options: selectOptions(doc),
		Links:   htmlutil.GetAnchors(finalUrl, doc.Find("table tr td:first-child a")),
	}, nil
}

// Get fetches a result page.
func (c *Client) Get(ctx context.Context, pageUrl string) ([]byte, error) {
	page, err := c.Fetch(ctx, pageUrl, nil)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err, pageUrl)
		return nil, err
	}
	return page.Body, nil
}

func selectOptions(doc *goquery.Document) []string {
	var options []string
	doc.Find("table.maincontent select option").Each(func(_ int, option *goquery.Selection) {
		value, ok := option.Attr("value")
		if !ok {
			value = option.Text()
		}
		// the value is posted back as-is
		if strings.TrimSpace(value) == "" {
			return
		}
		options = append(options, value)
	})
	return options
}

func formatForm(values url.Values) string {
	if len(values) == 0 {
		return "<NO FORM>"
	}
	return values.Encode()
}
