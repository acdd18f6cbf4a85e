package vendors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/services/stations-service/internal/cachebridge"
	"powerbank/backend/services/stations-service/internal/models"
)

func TestResolve(t *testing.T) {
	cases := map[string]Vendor{
		"ZAPP000123": VendorZapp,
		"NEXY000001": VendorNexy,
		"zapp000123": VendorUnsupported,
		"ACME42":     VendorUnsupported,
		"":           VendorUnsupported,
	}
	for id, want := range cases {
		assert.Equal(t, want, Resolve(id), id)
	}
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, KindUnsupportedStation, ErrorKind(unsupported("X1")))
	assert.Equal(t, KindTimeout, ErrorKind(&TimeoutError{Err: context.DeadlineExceeded}))
	assert.Equal(t, KindProtocol, ErrorKind(&ProtocolError{Status: 502, Message: "bad gateway"}))
	assert.Equal(t, KindCacheMiss, ErrorKind(cachebridge.ErrCacheMiss))
	assert.Equal(t, KindCacheUnavailable, ErrorKind(&cachebridge.UnavailableError{Err: errors.New("dial")}))
	assert.Equal(t, KindConfiguration, ErrorKind(&libconfig.ConfigurationError{Setting: "X"}))
	assert.Equal(t, KindUnknown, ErrorKind(errors.New("boom")))
}

func TestRegistry_UnsupportedPrefix(t *testing.T) {
	reg := NewRegistry(stubAdapter{}, stubAdapter{})

	_, err := reg.FetchBatteries(context.Background(), "ACME0001")
	assert.ErrorIs(t, err, ErrUnsupportedStation)

	slots, err := reg.FetchBatteries(context.Background(), "ZAPP0001")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestRegistry_MissingAdapterIsUnsupported(t *testing.T) {
	reg := NewRegistry(stubAdapter{}, nil)
	_, err := reg.FetchBatteries(context.Background(), "NEXY0001")
	assert.ErrorIs(t, err, ErrUnsupportedStation)
}

type stubAdapter struct{}

func (stubAdapter) FetchBatteries(context.Context, string) ([]models.BatterySlot, error) {
	return []models.BatterySlot{{SlotID: 1}}, nil
}

// --- vendor A ---

func TestZapp_FetchBatteries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/station/ZAPP0001", r.URL.Path)
		// base64("acct-7:")
		assert.Equal(t, "Basic YWNjdC03Og==", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"batteries":[
			{"slotNum":1,"batteryId":"B-1","batteryCapacity":95,"lockStatus":1},
			{"slotNum":2,"batteryId":"B-2","batteryCapacity":40,"lockStatus":0,"cableAbnormal":true}
		]}`))
	}))
	defer srv.Close()

	a := NewZappAdapter(ZappConfig{BaseURL: srv.URL + "/", AccountID: "acct-7"}, nil)
	slots, err := a.FetchBatteries(context.Background(), "ZAPP0001")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, models.BatterySlot{SlotID: 1, BatteryID: "B-1", CapacityPercent: 95, LockStatus: 1}, slots[0])
	assert.True(t, slots[1].CableAbnormal)
	assert.False(t, slots[1].BatteryAbnormal)
}

func TestZapp_MissingBatteriesIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	a := NewZappAdapter(ZappConfig{BaseURL: srv.URL, AccountID: "a"}, nil)
	slots, err := a.FetchBatteries(context.Background(), "ZAPP0001")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestZapp_ErrorStatusIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"account disabled"}`))
	}))
	defer srv.Close()

	a := NewZappAdapter(ZappConfig{BaseURL: srv.URL, AccountID: "a"}, nil)
	_, err := a.FetchBatteries(context.Background(), "ZAPP0001")

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, http.StatusForbidden, protoErr.Status)
	assert.Equal(t, "account disabled", protoErr.Message)
}

func TestZapp_MalformedBodyIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	a := NewZappAdapter(ZappConfig{BaseURL: srv.URL, AccountID: "a"}, nil)
	_, err := a.FetchBatteries(context.Background(), "ZAPP0001")
	assert.Equal(t, KindProtocol, ErrorKind(err))
}

func TestZapp_NoResponseIsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	a := NewZappAdapter(ZappConfig{BaseURL: srv.URL, AccountID: "a"}, nil)
	a.client.SetTimeout(50 * time.Millisecond)

	_, err := a.FetchBatteries(context.Background(), "ZAPP0001")
	var timeoutErr *TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}

func TestZapp_MissingSettings(t *testing.T) {
	_, err := NewZappAdapter(ZappConfig{AccountID: "a"}, nil).FetchBatteries(context.Background(), "ZAPP1")
	var cfgErr *libconfig.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ZappBaseURLSetting, cfgErr.Setting)

	_, err = NewZappAdapter(ZappConfig{BaseURL: "http://vendor"}, nil).Passthrough(context.Background(), "ZAPP1")
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ZappAccountIDSetting, cfgErr.Setting)
}

func TestZapp_PassthroughRelaysStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such station"}`))
	}))
	defer srv.Close()

	a := NewZappAdapter(ZappConfig{BaseURL: srv.URL, AccountID: "a"}, nil)
	raw, err := a.Passthrough(context.Background(), "ZAPP404")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, raw.Status)
	assert.Equal(t, "application/json", raw.ContentType)
	assert.JSONEq(t, `{"message":"no such station"}`, string(raw.Body))
}

// --- vendor B ---

type nexyFixture struct {
	srv   *httptest.Server
	mr    *miniredis.Miniredis
	hits  atomic.Int32
	query atomic.Value
}

func newNexyFixture(t *testing.T, ack string) (*nexyFixture, *NexyAdapter) {
	t.Helper()
	f := &nexyFixture{mr: miniredis.RunT(t)}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.query.Store(r.URL.Query())
		_, _ = w.Write([]byte(ack))
	}))
	t.Cleanup(f.srv.Close)

	bridge := cachebridge.NewBridge(redis.NewClient(&redis.Options{Addr: f.mr.Addr()}), 0)
	t.Cleanup(func() { _ = bridge.Close() })

	a := NewNexyAdapter(NexyConfig{BaseURL: f.srv.URL, Token: "tok-1"}, bridge, nil)
	return f, a
}

func TestNexy_AckThenCacheRead(t *testing.T) {
	f, a := newNexyFixture(t, `{"code":200,"msg":"ok"}`)
	require.NoError(t, f.mr.Set("stations:NEXY0001",
		`{"batteries":[{"slot":3,"batteryId":"NB-3","capacity":80,"lock":1,"batteryAbnormal":0,"cableAbnormal":0,"contactAbnormal":1}]}`))

	slots, err := a.FetchBatteries(context.Background(), "NEXY0001")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, models.BatterySlot{SlotID: 3, BatteryID: "NB-3", CapacityPercent: 80, LockStatus: 1, ContactAbnormal: true}, slots[0])

	q := f.query.Load().(url.Values)
	assert.Equal(t, []string{"64"}, q["I"])
	assert.Equal(t, []string{"NEXY0001"}, q["E"])
	assert.Equal(t, []string{"tok-1"}, q["token"])
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestNexy_AckButKeyAbsentIsCacheMiss(t *testing.T) {
	_, a := newNexyFixture(t, `{"code":200}`)

	slots, err := a.FetchBatteries(context.Background(), "NEXY0002")
	assert.ErrorIs(t, err, cachebridge.ErrCacheMiss)
	assert.Nil(t, slots)
}

func TestNexy_EmptyBatteriesIsCacheMiss(t *testing.T) {
	f, a := newNexyFixture(t, `{"code":200}`)
	require.NoError(t, f.mr.Set("stations:NEXY0003", `{"batteries":[]}`))
	require.NoError(t, f.mr.Set("stations:NEXY0004", `{"updatedAt":"now"}`))

	_, err := a.FetchBatteries(context.Background(), "NEXY0003")
	assert.ErrorIs(t, err, cachebridge.ErrCacheMiss)
	_, err = a.FetchBatteries(context.Background(), "NEXY0004")
	assert.ErrorIs(t, err, cachebridge.ErrCacheMiss)
}

func TestNexy_MalformedCacheIsProtocolError(t *testing.T) {
	f, a := newNexyFixture(t, `{"code":200}`)
	require.NoError(t, f.mr.Set("stations:NEXY0005", `{"batteries":"lots"}`))

	_, err := a.FetchBatteries(context.Background(), "NEXY0005")
	assert.Equal(t, KindProtocol, ErrorKind(err))
}

func TestNexy_CacheUnavailable(t *testing.T) {
	f, a := newNexyFixture(t, `{"code":200}`)
	f.mr.SetError("ERR backend failure")

	_, err := a.FetchBatteries(context.Background(), "NEXY0006")
	assert.Equal(t, KindCacheUnavailable, ErrorKind(err))
}

func TestNexy_NegativeAckSkipsCache(t *testing.T) {
	f, a := newNexyFixture(t, `{"code":500,"msg":"station offline"}`)
	require.NoError(t, f.mr.Set("stations:NEXY0007", `{"batteries":[{"slot":1}]}`))
	f.mr.SetError("ERR must not be read")

	_, err := a.FetchBatteries(context.Background(), "NEXY0007")
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, 500, protoErr.Status)
	assert.Equal(t, "station offline", protoErr.Message)
}

func TestNexy_MissingSettings(t *testing.T) {
	a := NewNexyAdapter(NexyConfig{BaseURL: "http://vendor"}, cachebridge.NewBridge(nil, 0), nil)
	_, err := a.FetchBatteries(context.Background(), "NEXY1")
	var cfgErr *libconfig.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, NexyTokenSetting, cfgErr.Setting)
}

func TestNexy_CacheNotConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":200}`))
	}))
	defer srv.Close()

	a := NewNexyAdapter(NexyConfig{BaseURL: srv.URL, Token: "t"}, cachebridge.NewBridge(nil, 0), nil)
	_, err := a.FetchBatteries(context.Background(), "NEXY1")
	assert.Equal(t, KindConfiguration, ErrorKind(err))
}

func TestNexy_AckPassthrough(t *testing.T) {
	f, a := newNexyFixture(t, `{"code":200,"msg":"accepted"}`)

	raw, err := a.Ack(context.Background(), "NEXY0008")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, raw.Status)
	assert.JSONEq(t, `{"code":200,"msg":"accepted"}`, string(raw.Body))
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestNexy_ReleaseSlot(t *testing.T) {
	f, a := newNexyFixture(t, `{"code":200}`)

	require.NoError(t, a.ReleaseSlot(context.Background(), "NEXY0009", 4))
	q := f.query.Load().(url.Values)
	assert.Equal(t, []string{"65"}, q["I"])
	assert.Equal(t, []string{"NEXY0009"}, q["E"])
	assert.Equal(t, []string{"4"}, q["L"])
	assert.Equal(t, []string{"tok-1"}, q["token"])

	assert.Error(t, a.ReleaseSlot(context.Background(), "NEXY0009", 0))
}
