package echoconsole

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/fs"
	"github.com/trezcool/confadmin/services/backend"
	"github.com/trezcool/confadmin/services/email"
	"github.com/trezcool/confadmin/services/logger"
	"github.com/trezcool/confadmin/storage/cache"
	"github.com/trezcool/confadmin/storage/database/inmem"
)

const (
	testCookie   = "console_token"
	testCSRF     = "csrf-t0ken"
	testPassword = "s3cret!"

	backendSecret = "backend-secret"
)

var (
	superAdmin = user.User{ID: "sa", FirstName: "Super", Email: "sa@test.cd", IsActive: true, Roles: []string{user.RoleSuperAdmin}}
	admin      = user.User{ID: "admin", FirstName: "Ada", Email: "admin@test.cd", IsActive: true, Roles: []string{user.RoleAdmin}}
	support    = user.User{ID: "support", FirstName: "Sam", Email: "support@test.cd", IsActive: true, Roles: []string{user.RoleSupport}}
	events     = user.User{ID: "events", FirstName: "Eve", Email: "events@test.cd", IsActive: true, Roles: []string{user.RoleEventManager}}
	hrManager  = user.User{ID: "hr", FirstName: "Hana", Email: "hr@test.cd", IsActive: true, Roles: []string{user.RoleHRManager}}
	member     = user.User{ID: "member", FirstName: "Mem", LastName: "Ber", Email: "member@test.cd", IsActive: true, Roles: []string{user.RoleMember}, KYCStatus: user.KYCPending}
	inactive   = user.User{ID: "gone", FirstName: "Gone", Email: "gone@test.cd", IsActive: false, Roles: []string{user.RoleAdmin}}
)

// fakeBackend is an in-memory platform API.
type fakeBackend struct {
	mu       sync.Mutex
	users    map[string]user.User
	kycs     map[string]user.KYC
	hotels   []backend.Hotel
	sponsors []backend.Sponsor
	uploads  map[string]string // sponsor id -> uploaded logo name
	scanLogs []backend.ScanLog
	calls    []string
	queries  map[string]url.Values
}

func newFakeBackend() *fakeBackend {
	fb := &fakeBackend{
		users: make(map[string]user.User),
		kycs: map[string]user.KYC{
			member.ID: {UserID: member.ID, Status: user.KYCPending, Documents: []user.KYCDocument{
				{Kind: "passport", Path: "kyc/member/passport.jpg", UploadedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)},
				{Kind: "proof_of_address", Path: "kyc/member/bill.pdf"},
			}},
			support.ID: {UserID: support.ID, Status: user.KYCAccepted},
		},
		hotels: []backend.Hotel{
			{ID: "h1", Name: "Pullman", Stars: 5, City: "Kinshasa", Country: "DRC"},
			{ID: "h2", Name: "Ihusi", Stars: 4, City: "Goma", Country: "DRC"},
		},
		sponsors: []backend.Sponsor{
			{ID: "sp1", Name: "Vodacom", Tier: "gold", ConferenceID: "c1", Logo: "sponsors/vodacom.png"},
		},
		uploads: make(map[string]string),
		scanLogs: []backend.ScanLog{
			{ID: "s1", ConferenceID: "c1", UserID: "member", UserName: "Mem Ber", Gate: "A", Valid: true, ScannedAt: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)},
			{ID: "s2", ConferenceID: "c1", UserID: "ghost", Gate: "B", ScannedAt: time.Date(2026, 6, 1, 9, 5, 0, 0, time.UTC)},
		},
		queries: make(map[string]url.Values),
	}
	for _, u := range []user.User{superAdmin, admin, support, events, hrManager, member, inactive} {
		fb.users[u.ID] = u
	}
	return fb
}

func (fb *fakeBackend) called(call string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := 0
	for _, c := range fb.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (fb *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.calls = append(fb.calls, r.Method+" "+r.URL.Path)
	fb.queries[r.URL.Path] = r.URL.Query()

	if r.URL.Path == "/auth/login" {
		var creds backend.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		for _, u := range fb.users {
			if u.Email == creds.Email && creds.Password == testPassword {
				writeJSON(w, http.StatusOK, backend.LoginResult{Token: signToken(u.ID, time.Hour), User: u})
				return
			}
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid credentials"})
		return
	}

	usr, ok := fb.authUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/auth/me":
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": usr})
	case parts[0] == "users":
		fb.serveUsers(w, r, parts[1:])
	case r.URL.Path == "/hotels" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": fb.hotels})
	case r.URL.Path == "/hotels" && r.Method == http.MethodPost:
		var h backend.Hotel
		_ = json.NewDecoder(r.Body).Decode(&h)
		if h.Name == "Taken" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": map[string][]string{"name": {"already exists"}}})
			return
		}
		h.ID = "h3"
		fb.hotels = append(fb.hotels, h)
		writeJSON(w, http.StatusCreated, h)
	case parts[0] == "sponsors" && r.Method != http.MethodGet:
		fb.serveSponsorWrite(w, r, parts[1:])
	case r.URL.Path == "/sponsors":
		writeJSON(w, http.StatusOK, fb.sponsors)
	case r.URL.Path == "/qr-logs":
		writeJSON(w, http.StatusOK, fb.scanLogs)
	case r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, []interface{}{})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

// serveSponsorWrite handles the multipart sponsor writes, recording the uploaded logo.
func (fb *fakeBackend) serveSponsorWrite(w http.ResponseWriter, r *http.Request, parts []string) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"message": "multipart expected"})
		return
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	sp := backend.Sponsor{
		Name: r.FormValue("name"), Tier: r.FormValue("tier"),
		Website: r.FormValue("website"), ConferenceID: r.FormValue("conference_id"),
	}
	idx := -1
	switch {
	case len(parts) == 0 && r.Method == http.MethodPost:
		sp.ID = "sp" + strconv.Itoa(len(fb.sponsors)+1)
	case len(parts) == 1 && r.Method == http.MethodPut:
		for i, cur := range fb.sponsors {
			if cur.ID == parts[0] {
				idx, sp.ID, sp.Logo = i, cur.ID, cur.Logo
			}
		}
		if idx < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "not allowed"})
		return
	}

	if f, hdr, err := r.FormFile("logo"); err == nil {
		_ = f.Close()
		fb.uploads[sp.ID] = hdr.Filename
		sp.Logo = "sponsors/" + hdr.Filename
	}
	if idx < 0 {
		fb.sponsors = append(fb.sponsors, sp)
		writeJSON(w, http.StatusCreated, sp)
		return
	}
	fb.sponsors[idx] = sp
	writeJSON(w, http.StatusOK, sp)
}

func (fb *fakeBackend) upload(id string) (string, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	name, ok := fb.uploads[id]
	return name, ok
}

func (fb *fakeBackend) sponsor(id string) backend.Sponsor {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, sp := range fb.sponsors {
		if sp.ID == id {
			return sp
		}
	}
	return backend.Sponsor{}
}

// authUser verifies the bearer token the way the platform does.
func (fb *fakeBackend) authUser(r *http.Request) (user.User, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := new(jwt.StandardClaims)
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(backendSecret), nil
	}); err != nil {
		return user.User{}, false
	}
	usr, ok := fb.users[claims.Subject]
	return usr, ok
}

func (fb *fakeBackend) serveUsers(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 0 {
		list := make([]user.User, 0, len(fb.users))
		for _, id := range []string{superAdmin.ID, admin.ID, support.ID, events.ID, hrManager.ID, member.ID, inactive.ID} {
			list = append(list, fb.users[id])
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	usr, ok := fb.users[parts[0]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, usr)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		delete(fb.users, usr.ID)
		w.WriteHeader(http.StatusNoContent)
	case parts[1] == "roles":
		var body struct {
			Roles []string `json:"roles"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		usr.Roles = body.Roles
		fb.users[usr.ID] = usr
		writeJSON(w, http.StatusOK, usr)
	case parts[1] == "status":
		var body struct {
			IsActive bool `json:"is_active"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		usr.IsActive = body.IsActive
		fb.users[usr.ID] = usr
		writeJSON(w, http.StatusOK, usr)
	case parts[1] == "kyc" && r.Method == http.MethodGet:
		kyc, ok := fb.kycs[usr.ID]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "no kyc"})
			return
		}
		writeJSON(w, http.StatusOK, kyc)
	case parts[1] == "kyc":
		var decision user.KYCDecision
		_ = json.NewDecoder(r.Body).Decode(&decision)
		kyc := fb.kycs[usr.ID]
		kyc.Status, kyc.Reason = decision.Status, decision.Reason
		fb.kycs[usr.ID] = kyc
		usr.KYCStatus = decision.Status
		fb.users[usr.ID] = usr
		writeJSON(w, http.StatusOK, kyc)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// signToken issues a backend token; the console never checks the signature.
func signToken(subject string, ttl time.Duration) string {
	return signTokenWith(backendSecret, subject, ttl)
}

func signTokenWith(key, subject string, ttl time.Duration) string {
	claims := jwt.StandardClaims{Subject: subject, ExpiresAt: time.Now().Add(ttl).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		panic(err)
	}
	return token
}

type testApp struct {
	server   *Server
	backend  *fakeBackend
	auditSvc *audit.Service
	mailSvc  *emailsvc.ConsoleServiceMock
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	fb := newFakeBackend()
	ts := httptest.NewServer(fb)
	t.Cleanup(ts.Close)

	conf := &core.Config{
		Env:              "TEST",
		AppName:          "Console",
		Build:            "test",
		TestMode:         true,
		SecretKey:        "test-secret",
		ConsoleBaseURL:   "http://console.test",
		DefaultFromEmail: "noreply@console.test",
		Backend: core.BackendConfig{
			APIBaseURL:     ts.URL,
			StorageBaseURL: "https://cdn.test",
			Timeout:        5 * time.Second,
		},
		Session: core.SessionConfig{CookieName: testCookie, MaxAge: 12 * time.Hour},
	}
	log := logsvc.NopLogger{}

	require.NoError(t, core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, true))
	translator := core.NewTranslator()
	validate := core.NewValidate(translator)
	user.InitValidators(validate, translator)

	mailSvc := emailsvc.NewConsoleServiceMock(conf, log)
	client := backend.NewClient(conf, log)
	auditSvc := audit.NewService(inmemdb.NewAuditRepository(), log)

	srv, err := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         log,
		Backend:        client,
		UserSvc:        user.NewService(client, mailSvc, validate),
		AuditSvc:       auditSvc,
		Cache:          cache.NewQuery(cache.NewMemoryStore(), time.Minute, log),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	require.NoError(t, err)
	return &testApp{server: srv, backend: fb, auditSvc: auditSvc, mailSvc: mailSvc}
}

type httpTest struct {
	name         string
	method       string
	path         string
	form         url.Values
	usr          *user.User
	wantCode     int
	wantLocation string
	wantBody     []string
	wantNotBody  []string
}

// newRequest builds a console request; forms carry the CSRF token and usr, when set, is logged in.
func newRequest(method, path string, form url.Values, usr *user.User) (*http.Request, *httptest.ResponseRecorder) {
	if method == "" {
		method = http.MethodGet
	}
	var req *http.Request
	if method == http.MethodPost {
		if form == nil {
			form = make(url.Values)
		}
		form.Set(csrfField, testCSRF)
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.AddCookie(&http.Cookie{Name: csrfField, Value: testCSRF})
	if usr != nil {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: signToken(usr.ID, time.Hour)})
	}
	return req, httptest.NewRecorder()
}

func (app *testApp) do(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newRequest(tt.method, tt.path, tt.form, tt.usr)
	app.server.ServeHTTP(rec, req)
	return rec
}

func checkResponse(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	assert.Equal(t, wantCode, rec.Code, rec.Body.String())
	if tt.wantLocation != "" {
		assert.Equal(t, tt.wantLocation, rec.Header().Get(echo.HeaderLocation))
	}
	for _, s := range tt.wantBody {
		assert.Contains(t, rec.Body.String(), s)
	}
	for _, s := range tt.wantNotBody {
		assert.NotContains(t, rec.Body.String(), s)
	}
}

// cookie returns the cookie name set by rec.
func cookie(rec *httptest.ResponseRecorder, name string) (*http.Cookie, bool) {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func userPtr(u user.User) *user.User { return &u }
