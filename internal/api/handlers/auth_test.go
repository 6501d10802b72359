package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/dom/snake-game-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        interface{}
		setup          func()
		expectedStatus int
		expectedDetail string
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful registration",
			request: map[string]string{
				"username": "newuser",
				"email":    "new@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.TokenResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
				assert.Equal(t, "bearer", result.TokenType)
			},
		},
		{
			name: "duplicate username",
			request: map[string]string{
				"username": "existinguser",
				"email":    "fresh@example.com",
				"password": "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().WithUsername("existinguser").Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Username already registered",
		},
		{
			name: "duplicate email",
			request: map[string]string{
				"username": "freshuser",
				"email":    "taken@example.com",
				"password": "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().WithEmail("taken@example.com").Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Email already registered",
		},
		{
			name: "missing username",
			request: map[string]string{
				"email":    "new@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: "username is required",
		},
		{
			name: "missing password",
			request: map[string]string{
				"username": "newuser",
				"email":    "new@example.com",
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: "password is required",
		},
		{
			name:           "malformed body",
			request:        "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := doJSON(t, http.MethodPost, ts.APIURL("/users/"), tt.request, nil)

			if tt.expectedDetail != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedDetail)
				return
			}
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_RegisterWithoutTrailingSlash(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.APIURL("/users"), map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "pw1",
	}, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewUserBuilder().
		WithUsername("alice").
		WithEmail("a@x.com").
		WithPassword("pw1").
		Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        interface{}
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "by username",
			request:        map[string]string{"username": "alice", "password": "pw1"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "by email",
			request:        map[string]string{"email": "a@x.com", "password": "pw1"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			request:        map[string]string{"username": "alice", "password": "wrong"},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Incorrect username or password",
		},
		{
			name:           "unknown user",
			request:        map[string]string{"username": "mallory", "password": "pw1"},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Incorrect username or password",
		},
		{
			name:           "no identifier",
			request:        map[string]string{"password": "pw1"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: "username or email is required",
		},
		{
			name:           "no password",
			request:        map[string]string{"username": "alice"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: "password is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.APIURL("/token"), tt.request, nil)

			if tt.expectedDetail != "" {
				if tt.expectedStatus == http.StatusUnauthorized {
					assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
				}
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedDetail)
				return
			}

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			access := testutil.AssertCookie(t, resp, "access_token")
			refresh := testutil.AssertCookie(t, resp, "refresh_token")

			var tokens testutil.TokenResponse
			testutil.AssertJSONResponse(t, resp, &tokens)
			assert.Equal(t, "bearer", tokens.TokenType)
			if access != nil && refresh != nil {
				assert.Equal(t, tokens.AccessToken, access.Value)
				assert.Equal(t, tokens.RefreshToken, refresh.Value)
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, tokens := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	tests := []struct {
		name           string
		url            string
		body           interface{}
		header         http.Header
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "query parameter",
			url:            ts.APIURL("/token/refresh?refresh_token=" + url.QueryEscape(tokens.RefreshToken)),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "json body",
			url:            ts.APIURL("/token/refresh"),
			body:           map[string]string{"refresh_token": tokens.RefreshToken},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "cookie",
			url:            ts.APIURL("/token/refresh"),
			header:         http.Header{"Cookie": []string{"refresh_token=" + tokens.RefreshToken}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "never issued",
			url:            ts.APIURL("/token/refresh?refresh_token=bogus"),
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Invalid refresh token",
		},
		{
			name:           "access token is not registered",
			url:            ts.APIURL("/token/refresh?refresh_token=" + url.QueryEscape(tokens.AccessToken)),
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Invalid refresh token",
		},
		{
			name:           "missing token",
			url:            ts.APIURL("/token/refresh"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: "refresh_token is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, tt.url, tt.body, tt.header)

			if tt.expectedDetail != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedDetail)
				return
			}

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			var result struct {
				AccessToken string `json:"access_token"`
				TokenType   string `json:"token_type"`
			}
			testutil.AssertJSONResponse(t, resp, &result)
			assert.NotEmpty(t, result.AccessToken)
			assert.Equal(t, "bearer", result.TokenType)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, tokens := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	resp := doJSON(t, http.MethodPost, ts.APIURL("/token/logout"),
		map[string]string{"refresh_token": tokens.RefreshToken}, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var result map[string]bool
	testutil.AssertJSONResponse(t, resp, &result)
	assert.True(t, result["success"])

	cleared := map[string]bool{}
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	assert.True(t, cleared["access_token"])
	assert.True(t, cleared["refresh_token"])

	resp = doJSON(t, http.MethodPost, ts.APIURL("/token/refresh"),
		map[string]string{"refresh_token": tokens.RefreshToken}, nil)
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid refresh token")
}

func TestAuthHandler_RefreshedTokenReadsUser(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, tokens := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	resp := doJSON(t, http.MethodPost, ts.APIURL("/token/refresh"),
		map[string]string{"refresh_token": tokens.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refreshed testutil.TokenResponse
	testutil.AssertJSONResponse(t, resp, &refreshed)

	resp = doJSON(t, http.MethodGet, ts.APIURL(userPath(user.ID)), nil, bearer(refreshed.AccessToken))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
}

func TestAuthHandler_TrailingSlashRoutes(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewUserBuilder().
		WithUsername("alice").
		WithEmail("a@x.com").
		WithPassword("pw1").
		Build(t, ts.DB.DB)

	resp := doJSON(t, http.MethodPost, ts.APIURL("/token/"), map[string]string{
		"username": "a@x.com",
		"email":    "a@x.com",
		"password": "pw1",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens testutil.TokenResponse
	testutil.AssertJSONResponse(t, resp, &tokens)

	resp = doJSON(t, http.MethodPost, ts.APIURL("/token/refresh/"),
		map[string]string{"refresh_token": tokens.RefreshToken}, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = doJSON(t, http.MethodPost, ts.APIURL("/token/logout/"),
		map[string]string{"refresh_token": tokens.RefreshToken}, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = doJSON(t, http.MethodGet, ts.APIURL("/check-username/?username=bob"), nil, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
}

func TestAuthHandler_IgnoresUnknownFields(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.APIURL("/users/"), map[string]string{
		"username":         "alice",
		"email":            "a@x.com",
		"password":         "pw1",
		"confirm_password": "pw1",
	}, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = doJSON(t, http.MethodPost, ts.APIURL("/token"), map[string]string{
		"username":   "alice",
		"password":   "pw1",
		"grant_type": "password",
	}, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
}
