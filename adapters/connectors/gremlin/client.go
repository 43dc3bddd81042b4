//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package gremlin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buger/jsonparser"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type httpQuery struct {
	Gremlin string `json:"gremlin"`
}

type responseStatus struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type responseResult struct {
	Data []any `json:"data"`
	Meta any   `json:"meta"`
}

type response struct {
	Status responseStatus `json:"status"`
	Result responseResult `json:"result"`
}

// Client talks to the HTTP endpoint of a Gremlin Server. Responses are
// requested in GraphSON 1.0 so values come back as plain JSON.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logrus.FieldLogger
}

func NewClient(endpoint string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		logger:     logger,
	}
}

// SetRateLimit caps the number of queries sent per second. Zero or less
// removes the cap.
func (c *Client) SetRateLimit(perSecond float64) {
	if perSecond <= 0 {
		c.limiter.SetLimit(rate.Inf)
		return
	}
	c.limiter.SetLimit(rate.Limit(perSecond))
	c.limiter.SetBurst(1)
}

// Execute runs the query and returns the result list. Numbers are returned
// as json.Number.
func (c *Client) Execute(ctx context.Context, query *Query) ([]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "wait for gremlin rate limit")
	}

	body, err := json.Marshal(httpQuery{Gremlin: query.String()})
	if err != nil {
		return nil, errors.Wrap(err, "marshal gremlin query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create gremlin request")
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/vnd.gremlin-v1.0+json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send gremlin request")
	}
	defer res.Body.Close()

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read gremlin response")
	}

	if res.StatusCode != http.StatusOK {
		if msg, err := jsonparser.GetString(buf, "status", "message"); err == nil && msg != "" {
			return nil, fmt.Errorf("gremlin server error (status %d): %s", res.StatusCode, msg)
		}
		return nil, fmt.Errorf("gremlin server error (status %d): %s", res.StatusCode, string(buf))
	}

	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var resData response
	if err := dec.Decode(&resData); err != nil {
		return nil, errors.Wrap(err, "decode gremlin response")
	}

	c.logger.WithField("action", "gremlin_execute").
		WithField("query", query.String()).
		WithField("results", len(resData.Result.Data)).
		Trace("query executed")
	return resData.Result.Data, nil
}

// Ping waits for the server to answer a trivial query, retrying with
// exponential backoff until maxWait elapses or ctx is done.
func (c *Client) Ping(ctx context.Context, maxWait time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = maxWait

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		_, err := c.Execute(ctx, G.V().Limit(0))
		if err != nil {
			c.logger.WithField("action", "gremlin_ping").
				WithField("attempt", attempt).
				WithError(err).
				Warn("gremlin server not reachable yet")
		}
		return err
	}, backoff.WithContext(b, ctx))
}
