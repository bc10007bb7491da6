package rates

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

// DefaultEndpoint is the Bank of Russia daily info SOAP service.
const DefaultEndpoint = "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"

const (
	soapAction     = "http://web.cbr.ru/KeyRate"
	rateSource     = "cbr_key_rate"
	defaultTimeout = 10 * time.Second
)

// KeyRateClient fetches the central bank key rate over SOAP and turns
// it into an annual deposit benchmark by adding a spread. The key rate
// itself is a policy rate; retail deposits trail it by a margin, which
// is what the spread models.
type KeyRateClient struct {
	endpoint      string
	spreadPercent float64
	client        *http.Client
	logger        *logrus.Logger
}

func NewKeyRateClient(endpoint string, spreadPercent float64, timeout time.Duration, logger *logrus.Logger) *KeyRateClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &KeyRateClient{
		endpoint:      endpoint,
		spreadPercent: spreadPercent,
		client:        &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

// AnnualRate requests the key rate for the last month and returns the
// most recent value plus the configured spread, as a decimal fraction.
func (c *KeyRateClient) AnnualRate() (models.MarketRate, error) {
	to := time.Now()
	from := to.AddDate(0, -1, 0)

	body, err := c.send(buildKeyRateRequest(from, to))
	if err != nil {
		return models.MarketRate{}, err
	}

	percent, asOf, err := parseKeyRateResponse(body)
	if err != nil {
		return models.MarketRate{}, err
	}

	rate := models.MarketRate{
		AnnualRate: (percent + c.spreadPercent) / 100,
		AsOf:       asOf,
		Source:     rateSource,
	}
	c.logger.WithFields(logrus.Fields{
		"key_rate_percent": percent,
		"spread_percent":   c.spreadPercent,
		"as_of":            asOf.Format("2006-01-02"),
	}).Debug("Fetched central bank key rate")
	return rate, nil
}

func buildKeyRateRequest(from, to time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <KeyRate xmlns="http://web.cbr.ru/">
      <fromDate>%s</fromDate>
      <ToDate>%s</ToDate>
    </KeyRate>
  </soap:Body>
</soap:Envelope>`, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func (c *KeyRateClient) send(envelope string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewBufferString(envelope))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrRateUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	return body, nil
}

// parseKeyRateResponse walks the diffgram rows and picks the latest one.
func parseKeyRateResponse(body []byte) (float64, time.Time, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: malformed response: %v", ErrRateUnavailable, err)
	}

	rows := doc.FindElements("//KR")
	if len(rows) == 0 {
		return 0, time.Time{}, fmt.Errorf("%w: no key rate rows in response", ErrRateUnavailable)
	}

	var (
		latest     time.Time
		latestRate float64
		found      bool
	)
	for _, row := range rows {
		dtEl := row.SelectElement("DT")
		rateEl := row.SelectElement("Rate")
		if dtEl == nil || rateEl == nil {
			continue
		}
		dt, err := parseSOAPDate(dtEl.Text())
		if err != nil {
			continue
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rateEl.Text()), 64)
		if err != nil {
			continue
		}
		if !found || dt.After(latest) {
			latest, latestRate, found = dt, rate, true
		}
	}
	if !found {
		return 0, time.Time{}, fmt.Errorf("%w: no parsable key rate rows", ErrRateUnavailable)
	}
	return latestRate, latest, nil
}

func parseSOAPDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if len(s) >= 10 {
		return time.Parse("2006-01-02", s[:10])
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
