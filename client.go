package main

import (
	"crypto/tls"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSON is a controller response fragment.
type JSON = gjson.Result

// refreshInterval is kept below the default APIC token lifetime (10m).
const refreshInterval = 8 * time.Minute

var errAuthentication = errors.New("authentication error")

type Client struct {
	client      *http.Client
	opts        *Options
	lastRefresh time.Time
}

type Query struct {
	uri   string
	query []string
}

func NewClient(opts *Options) *Client {
	cookieJar, err := cookiejar.New(nil)
	if err != nil {
		log.Panic(err)
	}
	httpClient := http.Client{
		Timeout: time.Second * time.Duration(opts.RequestTimeout),
		Jar:     cookieJar,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		},
	}
	return &Client{
		client: &httpClient,
		opts:   opts,
	}
}

func (c *Client) NewURL(q Query) string {
	res := fmt.Sprintf("https://%s%s.json", c.opts.IP, q.uri)
	if len(q.query) > 0 {
		return fmt.Sprintf("%s?%s", res, strings.Join(q.query, "&"))
	}
	return res
}

// responseError maps a non-200 reply to an error carrying the controller's
// own error text when it sent one.
func responseError(status string, body []byte) error {
	text := gjson.GetBytes(body, "imdata.0.error.attributes.text").Str
	if text != "" {
		return errors.Errorf("HTTP response: %s: %s", status, text)
	}
	return errors.Errorf("HTTP response: %s", status)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return body, responseError(res.Status, body)
	}
	return body, nil
}

// getRaw returns the whole response document, including totalCount.
func (c *Client) getRaw(q Query) (JSON, error) {
	log.Debug(fmt.Sprintf("GET request to %s", q.uri))
	req, err := http.NewRequest(http.MethodGet, c.NewURL(q), nil)
	if err != nil {
		return JSON{}, err
	}
	body, err := c.do(req)
	if err != nil {
		return JSON{}, errors.Wrapf(err, "GET %s", q.uri)
	}
	return gjson.ParseBytes(body), nil
}

func (c *Client) get(q Query) (JSON, error) {
	res, err := c.getRaw(q)
	if err != nil {
		return JSON{}, err
	}
	return res.Get("imdata"), nil
}

// getAll follows the controller's paging until every record is fetched.
func (c *Client) getAll(q Query, pageSize int) (res []JSON, err error) {
	for page := 0; ; page++ {
		paged := Query{uri: q.uri, query: append(append([]string{}, q.query...),
			fmt.Sprintf("page=%d", page),
			fmt.Sprintf("page-size=%d", pageSize),
		)}
		doc, err := c.getRaw(paged)
		if err != nil {
			return nil, err
		}
		records := doc.Get("imdata").Array()
		res = append(res, records...)
		total := doc.Get("totalCount").Int()
		if len(records) < pageSize || int64(len(res)) >= total {
			return res, nil
		}
	}
}

func (c *Client) post(uri string, payload string) (JSON, error) {
	log.Debug(fmt.Sprintf("POST request to %s", uri))
	req, err := http.NewRequest(http.MethodPost, c.NewURL(Query{uri: uri}), strings.NewReader(payload))
	if err != nil {
		return JSON{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	body, err := c.do(req)
	if err != nil {
		return JSON{}, errors.Wrapf(err, "POST %s", uri)
	}
	return gjson.GetBytes(body, "imdata"), nil
}

// commit writes payload at dn. Dry runs only log the payload.
func (c *Client) commit(dn string, payload string) error {
	if c.opts.DryRun {
		log.WithFields(logrus.Fields{
			"dn":      dn,
			"payload": payload,
		}).Debug("Dry run, not committing")
		return nil
	}
	_, err := c.post("/api/mo/"+dn, payload)
	return err
}

func (c *Client) login() error {
	uri := "/api/aaaLogin"
	data, err := sjson.Set(`{"aaaUser":{"attributes":{}}}`, "aaaUser.attributes.name", c.opts.Username)
	if err != nil {
		return err
	}
	if data, err = sjson.Set(data, "aaaUser.attributes.pwd", c.opts.Password); err != nil {
		return err
	}
	log.Debug(fmt.Sprintf("POST request to %s", uri))
	req, err := http.NewRequest(http.MethodPost, c.NewURL(Query{uri: uri}), strings.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	body, err := c.do(req)
	if err != nil {
		if gjson.GetBytes(body, "imdata.0.error").Exists() {
			return backoff.Permanent(errors.Wrap(errAuthentication, err.Error()))
		}
		return err
	}
	if gjson.GetBytes(body, "imdata.0.error.attributes.text").Str != "" {
		return backoff.Permanent(errAuthentication)
	}
	c.lastRefresh = time.Now()
	log.Info("Authentication successful.")
	return nil
}

func (c *Client) refresh() error {
	if _, err := c.get(Query{uri: "/api/aaaRefresh"}); err != nil {
		return err
	}
	c.lastRefresh = time.Now()
	return nil
}

func (c *Client) refreshIfStale() error {
	if time.Since(c.lastRefresh) < refreshInterval {
		return nil
	}
	log.Debug("Refreshing login token")
	return c.refresh()
}

func (c *Client) logout() error {
	data, err := sjson.Set(`{"aaaUser":{"attributes":{}}}`, "aaaUser.attributes.name", c.opts.Username)
	if err != nil {
		return err
	}
	_, err = c.post("/api/aaaLogout", data)
	return err
}

// loginLoop retries login on a constant interval. Rejected credentials
// are not retried.
func (c *Client) loginLoop() error {
	attempts := c.opts.LoginAttempts
	if attempts < 1 {
		attempts = 1
	}
	interval := time.Duration(c.opts.LoginRetryInterval) * time.Second
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(attempts-1))
	return backoff.RetryNotify(c.login, b, func(err error, next time.Duration) {
		log.Error(err)
		log.Info("Note, that login failures are expected on controller reload.")
		log.Info(fmt.Sprintf("Waiting %s before trying again...", next))
	})
}
