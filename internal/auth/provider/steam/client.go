package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const DefaultAPIBaseURL = "https://api.steampowered.com"

const playerSummariesPath = "/ISteamUser/GetPlayerSummaries/v2/"

// Client calls the Steam Web API. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

type playerSummariesResponse struct {
	Response *struct {
		Players []Profile `json:"players"`
	} `json:"response"`
}

// PlayerSummaries fetches the public profiles of the given Steam IDs.
// An empty result is reported as ErrInvalidProfile.
func (c *Client) PlayerSummaries(ctx context.Context, steamIDs ...string) ([]Profile, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("steamids", strings.Join(steamIDs, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+playerSummariesPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, newError(KindFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error repeats the request URL, which carries the API key.
		if uerr, ok := err.(*url.Error); ok {
			err = uerr.Err
		}
		return nil, newError(KindFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(KindFetchFailed, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body playerSummariesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, newError(KindInvalidProfile, err)
	}

	if body.Response == nil || len(body.Response.Players) == 0 {
		return nil, newError(KindInvalidProfile, nil)
	}

	return body.Response.Players, nil
}

// PlayerSummary fetches a single profile.
func (c *Client) PlayerSummary(ctx context.Context, steamID string) (*Profile, error) {
	players, err := c.PlayerSummaries(ctx, steamID)
	if err != nil {
		return nil, err
	}
	return &players[0], nil
}
