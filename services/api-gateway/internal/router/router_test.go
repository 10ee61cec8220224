package router

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/pkg/config"
	"github.com/kiaorakahi/marketplace/pkg/pricing"
	bookingv1 "github.com/kiaorakahi/marketplace/proto/booking/v1"
	celebrityv1 "github.com/kiaorakahi/marketplace/proto/celebrity/v1"
	userv1 "github.com/kiaorakahi/marketplace/proto/user/v1"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
)

type env struct {
	t       *testing.T
	r       *gin.Engine
	cfg     config.App
	clients *clients.Clients
	auth    *fakeAuth
	user    *fakeUser
	celeb   *fakeCelebrity
	book    *fakeBooking
	pay     *fakePayment
	support *fakeSupport
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("JWT_SECRET", "gateway-test-secret")
	gin.SetMode(gin.TestMode)

	cfg := config.App{
		UpstreamTimeout: time.Second,
		AllowedOrigins:  []string{"http://localhost:3000"},
		UploadDir:       t.TempDir(),
		PublicBaseURL:   "http://localhost:8080",
		Currency:        "nzd",
		DraftTTL:        time.Minute,
		DraftResetDelay: 10 * time.Millisecond,
		RushDeliveryFee: 2500,
		HDDownloadFee:   500,
		SocialShareFee:  1000,
		FormRatePerMin:  5,
		FormBurst:       3,
	}
	e := &env{
		t:    t,
		cfg:  cfg,
		auth: &fakeAuth{},
		user: &fakeUser{},
		celeb: &fakeCelebrity{celebs: map[string]*celebrityv1.Celebrity{
			"c1": {Id: "c1", UserId: "celeb-user-1", Name: "Aroha Ngata", Slug: "aroha-ngata", Price: 10000, Active: true},
			"c2": {Id: "c2", UserId: "celeb-user-2", Name: "Tane Walker", Slug: "tane-walker", Price: 20000, IsVip: true, Active: true},
			"c3": {Id: "c3", Name: "Retired", Slug: "retired", Price: 5000},
		}},
		book:    &fakeBooking{},
		pay:     &fakePayment{},
		support: &fakeSupport{},
	}
	e.clients = &clients.Clients{
		Auth:      e.auth,
		Celebrity: e.celeb,
		Book:      e.book,
		Pay:       e.pay,
		User:      e.user,
		Support:   e.support,
	}
	e.r = New(cfg, e.clients)
	return e
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := auth.CreateAccessToken(sub, role, sub+"@example.com", "Test "+role, time.Minute)
	require.NoError(t, err)
	return tok
}

func (e *env) do(method, path, tok string, body any, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:4000"
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAdminRoutesAreRoleGated(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, "/api/admin/stats", token(t, "fan-1", auth.RoleFan), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodGet, "/api/admin/stats", token(t, "admin-1", auth.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 20000, body["gross_revenue"])
	assert.EqualValues(t, 3, body["open_tickets"])
	assert.EqualValues(t, 4, body["pending_applications"])
	assert.EqualValues(t, 5, body["total_users"])
}

func intentBody(amount, tip int64, lines ...map[string]any) map[string]any {
	return map[string]any{
		"celebrity_id": "c1",
		"amount":       amount,
		"tip_amount":   tip,
		"booking": map[string]any{
			"recipient_name": "Mere",
			"occasion":       "birthday",
			"message":        "Happy birthday from the whanau",
			"email":          "fan@example.com",
			"phone":          "+64 21 555 0101",
		},
		"lines": lines,
	}
}

func TestCreatePaymentIntentRecomputesTheOrder(t *testing.T) {
	e := newEnv(t)
	fan := token(t, "fan-1", auth.RoleFan)

	body := intentBody(13000, 500,
		map[string]any{"code": "video", "amount": 10000},
		map[string]any{"code": "rush_delivery", "amount": 2500},
		map[string]any{"code": "tip", "amount": 500},
	)
	w := e.do(http.MethodPost, "/api/create-payment-intent", fan, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode(t, w)
	assert.Equal(t, "pi_order-1_secret_x", out["client_secret"])
	assert.Equal(t, "nzd", out["currency"])
	assert.EqualValues(t, 13000, out["amount"])

	require.Len(t, e.book.created, 1)
	ord := e.book.created[0]
	assert.Equal(t, "fan-1", ord.CustomerId)
	assert.Equal(t, "celeb-user-1", ord.CelebrityUserId)
	assert.Equal(t, int64(13000), ord.Amount)
	assert.Equal(t, int64(500), ord.TipAmount)
	assert.Len(t, ord.Lines, 3)
	assert.Equal(t, pricing.Split(13000, 500, false), ord.Split)
}

func TestCreatePaymentIntentRejectsWrongAmount(t *testing.T) {
	e := newEnv(t)
	fan := token(t, "fan-1", auth.RoleFan)

	w := e.do(http.MethodPost, "/api/create-payment-intent", fan, intentBody(9000, 0, map[string]any{"code": "video", "amount": 9000}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "does not match")
	assert.Empty(t, e.book.created)

	w = e.do(http.MethodPost, "/api/create-payment-intent", fan, intentBody(10000, 20000))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/create-payment-intent", fan, intentBody(10500, 0, map[string]any{"code": "karaoke", "amount": 500}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePaymentIntentHonoursSettingsAndCelebrity(t *testing.T) {
	e := newEnv(t)
	fan := token(t, "fan-1", auth.RoleFan)

	body := intentBody(5000, 0)
	body["celebrity_id"] = "c3"
	w := e.do(http.MethodPost, "/api/create-payment-intent", fan, body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	e.user.settings = map[string]string{userv1.SettingBookingsEnabled: "false"}
	w = e.do(http.MethodPost, "/api/create-payment-intent", fan, intentBody(10000, 0))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, e.book.created)
}

func TestCreatePaymentIntentIdempotencyKey(t *testing.T) {
	e := newEnv(t)
	fan := token(t, "fan-1", auth.RoleFan)

	first := e.do(http.MethodPost, "/api/create-payment-intent", fan, intentBody(10000, 0), "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	second := e.do(http.MethodPost, "/api/create-payment-intent", fan, intentBody(10000, 0), "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusOK, second.Code)

	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Len(t, e.book.created, 1)

	other := e.do(http.MethodPost, "/api/create-payment-intent", token(t, "fan-2", auth.RoleFan), intentBody(10000, 0), "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusOK, other.Code)
	assert.Len(t, e.book.created, 2)
	assert.Contains(t, e.pay.keys, "fan-1:abc-123")
	assert.Contains(t, e.pay.keys, "fan-2:abc-123")
}

func TestIdempotencyKeySurvivesGatewayRestart(t *testing.T) {
	e := newEnv(t)
	fan := token(t, "fan-1", auth.RoleFan)
	first := e.do(http.MethodPost, "/api/create-payment-intent", fan, intentBody(10000, 0), "Idempotency-Key", "k1")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	e.r = New(e.cfg, e.clients)
	retry := e.do(http.MethodPost, "/api/create-payment-intent", fan, intentBody(10000, 0), "Idempotency-Key", "k1")
	require.Equal(t, http.StatusOK, retry.Code, retry.Body.String())
	assert.Equal(t, decode(t, first)["client_secret"], decode(t, retry)["client_secret"])
	assert.Len(t, e.book.created, 1)

	e.r = New(e.cfg, e.clients)
	body := intentBody(12500, 0, map[string]any{"code": "rush_delivery", "amount": 2500})
	w := e.do(http.MethodPost, "/api/create-payment-intent", fan, body, "Idempotency-Key", "k1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, e.book.created, 1)
}

func TestConfirmPayment(t *testing.T) {
	e := newEnv(t)
	fan := token(t, "fan-1", auth.RoleFan)
	w := e.do(http.MethodPost, "/api/create-payment-intent", fan, intentBody(10000, 0))
	require.Equal(t, http.StatusOK, w.Code)
	secret := decode(t, w)["client_secret"].(string)

	w = e.do(http.MethodPost, "/api/payments/confirm", token(t, "fan-2", auth.RoleFan), map[string]string{"client_secret": secret, "card_token": "tokn_ok"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodPost, "/api/payments/confirm", fan, map[string]string{"client_secret": secret, "card_token": "tokn_declined"})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	e.pay.intents[secret].Status = "requires_payment"
	w = e.do(http.MethodPost, "/api/payments/confirm", fan, map[string]string{"client_secret": secret, "card_token": "tokn_ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "succeeded", decode(t, w)["status"])
}

func TestBookingRequestActions(t *testing.T) {
	e := newEnv(t)
	celeb := token(t, "celeb-user-1", auth.RoleCelebrity)

	w := e.do(http.MethodPatch, "/api/celebrity/booking-requests/o1", celeb, map[string]string{"action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, e.book.responds)

	w = e.do(http.MethodPatch, "/api/celebrity/booking-requests/o1", celeb, map[string]string{"action": "decline", "reason": "travelling"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, e.book.responds, 1)
	assert.Equal(t, "c1", e.book.responds[0].CelebrityId)
	assert.Equal(t, bookingv1.ActionDecline, e.book.responds[0].Action)

	w = e.do(http.MethodPatch, "/api/celebrity/booking-requests/not-pending", celeb, map[string]string{"action": "accept"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodPatch, "/api/celebrity/booking-requests/o1", token(t, "fan-1", auth.RoleFan), map[string]string{"action": "accept"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingRequestsHideUnpaidOrders(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/api/celebrity/booking-requests?status=pending", token(t, "celeb-user-2", auth.RoleCelebrity), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, e.book.lists, 1)
	assert.Equal(t, "c2", e.book.lists[0].CelebrityId)
	assert.Equal(t, bookingv1.StatusPending, e.book.lists[0].Status)
	assert.True(t, e.book.lists[0].PaidOnly)
}

func TestSupportCreateIsRateLimited(t *testing.T) {
	e := newEnv(t)
	body := map[string]string{
		"name":    "Hemi",
		"email":   "hemi@example.com",
		"subject": "Where is my video?",
		"message": "It has been two weeks since I ordered.",
	}
	for i := 0; i < e.cfg.FormBurst; i++ {
		w := e.do(http.MethodPost, "/api/support", "", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Regexp(t, `^TKT-\d{8}-[A-Z0-9]{4}$`, decode(t, w)["ticket_number"])
	}
	w := e.do(http.MethodPost, "/api/support", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSupportLookupNeedsBothFields(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/api/support?ticketNumber=TKT-12345678-AB12", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApprovingApplicationPromotesAccount(t *testing.T) {
	e := newEnv(t)
	admin := token(t, "admin-1", auth.RoleAdmin)

	w := e.do(http.MethodPatch, "/api/admin/applications/app-1", admin, map[string]any{"approve": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, e.auth.updates, 1)
	assert.Equal(t, "applicant-1", e.auth.updates[0].Id)
	assert.Equal(t, auth.RoleCelebrity, e.auth.updates[0].Role)
	require.Len(t, e.user.updates, 1)
	assert.Equal(t, auth.RoleCelebrity, e.user.updates[0].Role)

	w = e.do(http.MethodPatch, "/api/admin/applications/app-2", admin, map[string]any{"approve": false, "note": "blurry ID"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, e.auth.updates, 1)

	w = e.do(http.MethodPatch, "/api/admin/applications/app-3", admin, map[string]any{"note": "missing approve"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationsClosed(t *testing.T) {
	e := newEnv(t)
	e.user.settings = map[string]string{userv1.SettingApplicationsOpen: "false"}
	w := e.do(http.MethodPost, "/api/celebrity-applications", token(t, "fan-1", auth.RoleFan), map[string]any{"name": "Kiri"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDraftWizardFlow(t *testing.T) {
	e := newEnv(t)
	fan := token(t, "fan-1", auth.RoleFan)

	w := e.do(http.MethodPost, "/api/drafts", fan, map[string]string{"celebrity_id": "c2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)
	path := "/api/drafts/" + id

	w = e.do(http.MethodPost, path+"/next", fan, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, path, token(t, "fan-2", auth.RoleFan), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	form := map[string]any{
		"recipient_name": "Mere",
		"occasion":       "graduation",
		"message":        "Ka pai!",
		"add_ons":        []string{"hd_download"},
		"tip_amount":     1000,
		"email":          "fan@example.com",
		"phone":          "021 555 0101",
	}
	w = e.do(http.MethodPut, path, fan, form)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 21500, decode(t, w)["total"])

	for i := 0; i < 4; i++ {
		w = e.do(http.MethodPost, path+"/next", fan, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	view := decode(t, w)
	assert.Equal(t, "payment", view["step"])
	require.NotNil(t, view["intent"])
	require.Len(t, e.book.created, 1)
	assert.True(t, e.book.created[0].IsVip)

	w = e.do(http.MethodPost, path+"/confirm", fan, map[string]string{"card_token": "tokn_declined"})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	e.pay.intents["pi_order-1_secret_x"].Status = "requires_payment"
	w = e.do(http.MethodPost, path+"/confirm", fan, map[string]string{"card_token": "tokn_ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", decode(t, w)["step"])

	w = e.do(http.MethodPost, path+"/back", fan, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodDelete, path, fan, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDraftEditAfterBackSupersedesOrder(t *testing.T) {
	e := newEnv(t)
	fan := token(t, "fan-1", auth.RoleFan)

	w := e.do(http.MethodPost, "/api/drafts", fan, map[string]string{"celebrity_id": "c1"})
	require.Equal(t, http.StatusCreated, w.Code)
	path := "/api/drafts/" + decode(t, w)["id"].(string)
	form := map[string]any{
		"recipient_name": "Mere", "occasion": "birthday", "message": "old message",
		"email": "fan@example.com", "phone": "021 555 0101",
	}
	require.Equal(t, http.StatusOK, e.do(http.MethodPut, path, fan, form).Code)
	for i := 0; i < 4; i++ {
		require.Equal(t, http.StatusOK, e.do(http.MethodPost, path+"/next", fan, nil).Code)
	}
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, path+"/back", fan, nil).Code)

	form["recipient_name"] = "Someone else"
	form["message"] = "NEW message"
	require.Equal(t, http.StatusOK, e.do(http.MethodPut, path, fan, form).Code)
	w = e.do(http.MethodPost, path+"/next", fan, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, e.book.created, 2)
	assert.Equal(t, "Someone else", e.book.created[1].RecipientName)
	assert.Equal(t, "NEW message", e.book.created[1].Message)
	intent := decode(t, w)["intent"].(map[string]any)
	assert.Equal(t, "order-2", intent["order_id"])
	require.Len(t, e.book.cancelled, 1)
	assert.Equal(t, "order-1", e.book.cancelled[0].Id)
	assert.Equal(t, bookingv1.StatusCancelled, e.book.cancelled[0].Status)

	require.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, path, fan, nil).Code)
	require.Len(t, e.book.cancelled, 2)
	assert.Equal(t, "order-2", e.book.cancelled[1].Id)
}

func TestDraftAwaitingAuthorization(t *testing.T) {
	e := newEnv(t)
	e.pay.authorize = true
	fan := token(t, "fan-1", auth.RoleFan)

	w := e.do(http.MethodPost, "/api/drafts", fan, map[string]string{"celebrity_id": "c1"})
	require.Equal(t, http.StatusCreated, w.Code)
	path := "/api/drafts/" + decode(t, w)["id"].(string)
	w = e.do(http.MethodPut, path, fan, map[string]any{
		"recipient_name": "Mere", "occasion": "birthday", "message": "Kia ora",
		"email": "fan@example.com", "phone": "021 555 0101",
	})
	require.Equal(t, http.StatusOK, w.Code)
	for i := 0; i < 4; i++ {
		require.Equal(t, http.StatusOK, e.do(http.MethodPost, path+"/next", fan, nil).Code)
	}

	w = e.do(http.MethodPost, path+"/confirm", fan, map[string]string{"card_token": "tokn_3ds"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "https://issuer.example/3ds", decode(t, w)["authorize_uri"])
}

func multipartBody(t *testing.T, kind, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("kind", kind))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func (e *env) upload(tok, kind, filename string, content []byte) *httptest.ResponseRecorder {
	body, ct := multipartBody(e.t, kind, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func TestUpload(t *testing.T) {
	e := newEnv(t)
	fan := token(t, "fan-1", auth.RoleFan)

	w := e.upload(fan, "profile_photo", "me.png", pngBytes(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, "image/png", out["content_type"])
	url := out["url"].(string)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/profile_photo/"))
	_, err := os.Stat(filepath.Join(e.cfg.UploadDir, "profile_photo", filepath.Base(url)))
	assert.NoError(t, err)

	w = e.upload(fan, "profile_photo", "me.png", []byte("plain text pretending to be a png"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = e.upload(fan, "tax_return", "x.pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.upload(fan, "delivery_video", "v.mp4", []byte("whatever"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
