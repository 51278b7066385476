package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/api"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/services"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/onedreamlabs/onedream-staking-indexer/testutil"
	"github.com/onedreamlabs/onedream-staking-indexer/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	State *types.State    `json:"state"`
	Error string          `json:"error"`
}

func setup(t *testing.T) (*mocks.Backend, *httptest.Server) {
	t.Helper()
	backend := mocks.NewBackend(t)
	srv := httptest.NewServer(api.New(config.DefaultServerConfig(), backend).Handler())
	t.Cleanup(srv.Close)
	return backend, srv
}

func do(t *testing.T, method, url string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func successState(domain types.Domain, address string) types.State {
	return types.State{Domain: domain, Address: address, Status: types.StatusSuccess, UpdatedAt: time.Now().UTC()}
}

func TestHealth(t *testing.T) {
	_, srv := setup(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetStaking(t *testing.T) {
	backend, srv := setup(t)
	backend.On("RefreshStaking", mock.Anything, false).Return(&types.StakingOverview{
		Plans:              []types.StakingPlan{{ID: 1, Name: "Flexible"}},
		ReferralCommission: "2.5%",
	}, nil)
	backend.On("State", types.DomainStaking, "").Return(successState(types.DomainStaking, ""))

	status, body := do(t, http.MethodGet, srv.URL+"/v1/staking")
	require.Equal(t, http.StatusOK, status)

	var overview types.StakingOverview
	require.NoError(t, json.Unmarshal(body.Data, &overview))
	assert.Equal(t, "2.5%", overview.ReferralCommission)
	require.Len(t, overview.Plans, 1)
	require.NotNil(t, body.State)
	assert.Equal(t, types.StatusSuccess, body.State.Status)
}

func TestGetToken_Force(t *testing.T) {
	backend, srv := setup(t)
	backend.On("RefreshToken", mock.Anything, true).Return(&types.TokenData{Holders: "N/A"}, nil)
	backend.On("State", types.DomainToken, "").Return(successState(types.DomainToken, ""))

	status, _ := do(t, http.MethodGet, srv.URL+"/v1/token?force=true")
	assert.Equal(t, http.StatusOK, status)
}

func TestUserRoutes(t *testing.T) {
	user := testutil.RandomAddress()
	lower := "0x" + common.Bytes2Hex(user.Bytes())

	t.Run("staking", func(t *testing.T) {
		backend, srv := setup(t)
		backend.On("RefreshUserStaking", mock.Anything, user, false).
			Return(&types.UserStakingData{Address: user.Hex(), ActiveStakesCount: 1}, nil)
		backend.On("State", types.DomainUserStaking, user.Hex()).
			Return(successState(types.DomainUserStaking, user.Hex()))

		status, body := do(t, http.MethodGet, fmt.Sprintf("%s/v1/users/%s/staking", srv.URL, lower))
		require.Equal(t, http.StatusOK, status)
		var data types.UserStakingData
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.Equal(t, 1, data.ActiveStakesCount)
	})

	t.Run("referrals", func(t *testing.T) {
		backend, srv := setup(t)
		backend.On("RefreshReferral", mock.Anything, user, false).
			Return(&types.ReferralData{Address: user.Hex(), Incomplete: true}, nil)
		backend.On("State", types.DomainReferral, user.Hex()).
			Return(successState(types.DomainReferral, user.Hex()))

		status, body := do(t, http.MethodGet, fmt.Sprintf("%s/v1/users/%s/referrals", srv.URL, user.Hex()))
		require.Equal(t, http.StatusOK, status)
		var data types.ReferralData
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.True(t, data.Incomplete)
	})

	t.Run("invalid address", func(t *testing.T) {
		_, srv := setup(t)
		for _, route := range []string{"staking", "referrals", "vault"} {
			status, body := do(t, http.MethodGet, fmt.Sprintf("%s/v1/users/0x1234/%s", srv.URL, route))
			assert.Equal(t, http.StatusBadRequest, status, route)
			assert.NotEmpty(t, body.Error)
		}
	})
}

func TestGetVault_NotDeployed(t *testing.T) {
	backend, srv := setup(t)
	backend.On("RefreshVault", mock.Anything, false).
		Return(nil, fmt.Errorf("Contract not deployed yet: %w", services.ErrContractNotConfigured))
	backend.On("State", types.DomainVault, "").Return(types.State{
		Domain: types.DomainVault, Status: types.StatusError, Error: "Contract not deployed yet",
	})

	status, body := do(t, http.MethodGet, srv.URL+"/v1/vault")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "Contract not deployed yet", body.Error)
	require.NotNil(t, body.State)
	assert.Equal(t, types.StatusError, body.State.Status)
}

func TestGetReferrals_ScanPending(t *testing.T) {
	backend, srv := setup(t)
	user := testutil.RandomAddress()
	msg := "Referral history is still being scanned, try again shortly"
	backend.On("RefreshReferral", mock.Anything, user, false).
		Return(nil, fmt.Errorf("%s: %w", msg, services.ErrReferralScanPending))
	backend.On("State", types.DomainReferral, user.Hex()).Return(types.State{
		Domain: types.DomainReferral, Address: user.Hex(), Status: types.StatusLoading, Error: msg,
	})

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, fmt.Sprintf("%s/v1/users/%s/referrals", srv.URL, user.Hex()), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "30", resp.Header.Get("Retry-After"))
	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, msg, body.Error)
	require.NotNil(t, body.State)
	assert.Equal(t, types.StatusLoading, body.State.Status)
}

func TestRefreshFailure(t *testing.T) {
	backend, srv := setup(t)
	backend.On("RefreshDomain", mock.Anything, types.DomainToken, "").
		Return(nil, fmt.Errorf("Failed to fetch live token data: %w", testutil.ErrReverted))
	backend.On("State", types.DomainToken, "").Return(types.State{
		Domain: types.DomainToken, Status: types.StatusError, Error: "Failed to fetch live token data",
	})

	status, body := do(t, http.MethodPost, srv.URL+"/v1/refresh/token")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Failed to fetch live token data", body.Error)
}

func TestRefresh(t *testing.T) {
	user := testutil.RandomAddress()

	t.Run("wallet scoped", func(t *testing.T) {
		backend, srv := setup(t)
		backend.On("RefreshDomain", mock.Anything, types.DomainReferral, user.Hex()).
			Return(&types.ReferralData{Address: user.Hex()}, nil)
		backend.On("State", types.DomainReferral, user.Hex()).
			Return(successState(types.DomainReferral, user.Hex()))

		status, _ := do(t, http.MethodPost, fmt.Sprintf("%s/v1/refresh/referral?address=%s", srv.URL, user.Hex()))
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("missing address", func(t *testing.T) {
		backend, srv := setup(t)
		backend.On("RefreshDomain", mock.Anything, types.DomainUserStaking, "").
			Return(nil, fmt.Errorf("user-staking: %w", services.ErrAddressRequired))
		backend.On("State", types.DomainUserStaking, "").Return(types.State{Domain: types.DomainUserStaking})

		status, _ := do(t, http.MethodPost, srv.URL+"/v1/refresh/user-staking")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("unknown domain", func(t *testing.T) {
		_, srv := setup(t)
		status, _ := do(t, http.MethodPost, srv.URL+"/v1/refresh/nft")
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestStates(t *testing.T) {
	backend, srv := setup(t)
	backend.On("States").Return([]types.State{
		{Domain: types.DomainStaking, Status: types.StatusSuccess},
		{Domain: types.DomainToken, Status: types.StatusIdle},
	})

	status, body := do(t, http.MethodGet, srv.URL+"/v1/state")
	require.Equal(t, http.StatusOK, status)
	var states []types.State
	require.NoError(t, json.Unmarshal(body.Data, &states))
	assert.Len(t, states, 2)
}
