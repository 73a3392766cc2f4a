package currents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, env Envelope) string {
	t.Helper()
	data, err := json.Marshal(env)
	require.NoError(t, err)
	return string(data)
}

func TestSearchNewsMCP_DefaultStartDate(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)
	var got url.Values
	client := newHTTPBacked(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"status":"ok","news":[]}`))
	}, WithClock(func() time.Time { return fixed }))

	env, err := client.SearchNewsMCP(context.Background(), SearchNewsArgs{})
	require.NoError(t, err)
	require.False(t, env.Failed())

	assert.Equal(t, "2024-05-01T08:15:00+00:00", got.Get("start_date"))
	assert.False(t, got.Has("end_date"), "end_date has no default")
	for _, key := range []string{"language", "keywords", "country", "category"} {
		assert.False(t, got.Has(key), "%s must be omitted", key)
	}

	require.NotNil(t, env.SearchParams)
	assert.Equal(t, "2024-05-01T08:15:00+00:00", env.SearchParams.StartDate)
}

func TestSearchNewsMCP_ExplicitWindow(t *testing.T) {
	var got url.Values
	client := newHTTPBacked(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"status":"ok","news":[]}`))
	})

	args := SearchNewsArgs{
		Language:  "en",
		Keywords:  "election",
		StartDate: "2024-01-01T00:00:00+00:00",
		EndDate:   "2024-01-02T00:00:00+00:00",
	}
	env, err := client.SearchNewsMCP(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01T00:00:00+00:00", got.Get("start_date"))
	assert.Equal(t, "2024-01-02T00:00:00+00:00", got.Get("end_date"))
	assert.Equal(t, "en", got.Get("language"))
	assert.Equal(t, "election", got.Get("keywords"))

	assert.Equal(t, &SearchParams{
		Language:  "en",
		Keywords:  "election",
		StartDate: "2024-01-01T00:00:00+00:00",
		EndDate:   "2024-01-02T00:00:00+00:00",
	}, env.SearchParams)
}

func TestSearchNewsMCP_ResultVerbatim(t *testing.T) {
	raw := `{"status":"ok","page":1,"news":[{"id":"x","title":"T","description":"","url":"u","author":"a","image":"None","language":"en","category":["regional"],"published":"2024-01-01 10:00:00 +0000","score":9007199254740993}]}`
	client := newHTTPBacked(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(raw))
	})

	env, err := client.SearchNewsMCP(context.Background(), SearchNewsArgs{Keywords: "k"})
	require.NoError(t, err)

	result, err := json.Marshal(env.Result)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(result))
}

func TestGetLatestNewsMCP(t *testing.T) {
	raw := `{"status":"ok","news":[]}`
	var query string
	client := newHTTPBacked(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(raw))
	})

	env, err := client.GetLatestNewsMCP(context.Background(), GetLatestNewsArgs{Language: "es"})
	require.NoError(t, err)

	assert.Equal(t, "language=es", query)
	assert.JSONEq(t, `{"success":true,"language":"es","result":`+raw+`}`, encode(t, env))
}

func TestGetLatestNewsMCP_NoLanguage(t *testing.T) {
	var query = "unset"
	client := newHTTPBacked(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"status":"ok","news":[]}`))
	})

	env, err := client.GetLatestNewsMCP(context.Background(), GetLatestNewsArgs{})
	require.NoError(t, err)
	assert.Empty(t, query)
	assert.JSONEq(t, `{"success":true,"result":{"status":"ok","news":[]}}`, encode(t, env))
}

func TestAvailableLanguagesMCP_Scenario(t *testing.T) {
	raw := `{"status":"ok","languages":{"en":"English"},"description":"d"}`
	client := newHTTPBacked(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/available/languages", r.URL.Path)
		_, _ = w.Write([]byte(raw))
	})

	env, err := client.GetAvailableLanguagesMCP(context.Background(), GetAvailableLanguagesArgs{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"result":`+raw+`}`, encode(t, env))
}

func TestSearchNewsMCP_ServerErrorScenario(t *testing.T) {
	client := newHTTPBacked(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("server error"))
	})

	env, err := client.SearchNewsMCP(context.Background(), SearchNewsArgs{Language: "en", Keywords: "election"})
	require.NoError(t, err)

	require.NotNil(t, env.Success)
	assert.False(t, *env.Success)
	assert.Nil(t, env.Result)
	assert.Contains(t, env.Error, "500")
	assert.Contains(t, env.Error, "server error")
}

func TestMCP_ProviderRejections(t *testing.T) {
	statuses := []struct {
		name    string
		status  int
		message string
	}{
		{"unauthorized", http.StatusUnauthorized, "invalid or expired API key"},
		{"rate limited", http.StatusTooManyRequests, "request limit reached"},
	}

	for _, st := range statuses {
		client := newHTTPBacked(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(st.status)
		})
		ctx := context.Background()

		t.Run(st.name+"/with success key", func(t *testing.T) {
			for _, call := range []func() (Envelope, error){
				func() (Envelope, error) { return client.SearchNewsMCP(ctx, SearchNewsArgs{}) },
				func() (Envelope, error) { return client.GetLatestNewsMCP(ctx, GetLatestNewsArgs{}) },
			} {
				env, err := call()
				require.NoError(t, err)
				require.NotNil(t, env.Success)
				assert.False(t, *env.Success)
				assert.Contains(t, env.Error, st.message)
				assert.Nil(t, env.Result)
			}
		})

		t.Run(st.name+"/bare", func(t *testing.T) {
			cases := []struct {
				call   func() (Envelope, error)
				prefix string
			}{
				{func() (Envelope, error) { return client.GetAvailableLanguagesMCP(ctx, GetAvailableLanguagesArgs{}) }, "failed to get available languages: "},
				{func() (Envelope, error) { return client.GetAvailableRegionsMCP(ctx, GetAvailableRegionsArgs{}) }, "failed to get available regions: "},
				{func() (Envelope, error) { return client.GetAvailableCategoriesMCP(ctx, GetAvailableCategoriesArgs{}) }, "failed to get available categories: "},
			}
			for _, c := range cases {
				env, err := c.call()
				require.NoError(t, err)
				assert.Nil(t, env.Success)
				assert.True(t, env.Failed())
				assert.Contains(t, env.Error, c.prefix)
				assert.Contains(t, env.Error, st.message)

				var decoded map[string]any
				require.NoError(t, json.Unmarshal([]byte(encode(t, env)), &decoded))
				assert.NotContains(t, decoded, "success")
				assert.NotContains(t, decoded, "result")
			}
		})
	}
}

func TestEnvelopeHelpers(t *testing.T) {
	assert.JSONEq(t, `{"success":true,"result":{"a":1}}`, encode(t, Succeed(map[string]int{"a": 1})))
	assert.JSONEq(t, `{"success":false,"error":"x"}`, encode(t, Fail("x")))
	assert.JSONEq(t, `{"error":"x"}`, encode(t, FailBare("x")))
	assert.JSONEq(t, `{"success":true,"result":null}`, encode(t, Succeed(nil)))
	assert.False(t, Succeed(nil).Failed())
	assert.True(t, Fail("x").Failed())
}
