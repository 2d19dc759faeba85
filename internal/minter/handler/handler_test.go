package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"mintgate/internal/ledger"
	"mintgate/internal/minter/handler/mocks"
	"mintgate/internal/minter/models"
	projectmodels "mintgate/internal/project/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

var (
	superAdmin = domain.MustParseAddress("0x00000000000000000000000000000000000000ad")
	artist     = domain.MustParseAddress("0x00000000000000000000000000000000000000a1")
	owner      = domain.MustParseAddress("0x00000000000000000000000000000000000000c1")
	additional = domain.MustParseAddress("0x00000000000000000000000000000000000000c2")
	minterOne  = domain.MinterID(domain.MustParseAddress("0x00000000000000000000000000000000000000b1"))
)

type stubValidator map[string]domain.Address

func (v stubValidator) ValidateCaller(token string) (domain.Address, error) {
	if addr, ok := v[token]; ok {
		return addr, nil
	}
	return "", errors.New("invalid token")
}

// amountEq matches an Amount by value.
type amountEq string

func (m amountEq) Matches(x any) bool {
	a, ok := x.(domain.Amount)
	return ok && a.String() == string(m)
}

func (m amountEq) String() string {
	return fmt.Sprintf("amount %s", string(m))
}

type HandlerSuite struct {
	suite.Suite
	engine *mocks.MockEngine
	policy *mocks.MockPolicy
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.engine = mocks.NewMockEngine(ctrl)
	s.policy = mocks.NewMockPolicy(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.engine, s.policy, logger, stubValidator{
		"admin":  superAdmin,
		"artist": artist,
		"owner":  owner,
	}).Register(s.router)
}

func (s *HandlerSuite) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) path(suffix string) string {
	return "/minters/" + minterOne.String() + "/projects/0/" + suffix
}

func (s *HandlerSuite) TestUpdatePrice() {
	s.Run("artist sets the price", func() {
		s.policy.EXPECT().UpdatePricePerUnit(gomock.Any(), artist, domain.ProjectID(0), amountEq("1100000000000000000")).
			Return(&projectmodels.Project{ID: 0, PricePerUnit: domain.MustParseAmount("1100000000000000000")}, nil)
		w := s.do(http.MethodPut, s.path("price"), `{"price_per_unit":"1100000000000000000"}`, "artist")
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"price_per_unit":"1100000000000000000"`)
	})

	s.Run("super-admin is forbidden", func() {
		s.policy.EXPECT().UpdatePricePerUnit(gomock.Any(), superAdmin, domain.ProjectID(0), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotArtist, "only the project artist may perform this action"))
		w := s.do(http.MethodPut, s.path("price"), `{"price_per_unit":"1"}`, "admin")
		s.Equal(http.StatusForbidden, w.Code)
		s.Contains(w.Body.String(), `"not_artist"`)
	})

	s.Run("negative price is rejected", func() {
		w := s.do(http.MethodPut, s.path("price"), `{"price_per_unit":"-1"}`, "artist")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestTogglePurchaseTo() {
	s.policy.EXPECT().TogglePurchaseToDisabled(gomock.Any(), superAdmin, domain.ProjectID(0)).
		Return(&projectmodels.Project{ID: 0, PurchaseToDisabled: true}, nil)
	w := s.do(http.MethodPost, s.path("purchase-to-disabled"), "", "admin")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"project_id":0,"purchase_to_disabled":true}`, w.Body.String())
}

func (s *HandlerSuite) TestPurchase() {
	s.Run("admitted", func() {
		s.engine.EXPECT().Purchase(gomock.Any(), minterOne, domain.ProjectID(0), owner, amountEq("1000000000000000000")).
			Return(&models.Result{
				Receipt: &ledger.Receipt{TokenID: 0, ProjectID: 0, Owner: owner},
				Minter:  minterOne,
				Caller:  owner,
			}, nil)
		w := s.do(http.MethodPost, s.path("purchase"), `{"payment":"1000000000000000000"}`, "owner")
		s.Equal(http.StatusCreated, w.Code)
		s.Contains(w.Body.String(), `"token_id":0`)
	})

	s.Run("rejection reason is reported", func() {
		s.engine.EXPECT().Purchase(gomock.Any(), minterOne, domain.ProjectID(0), owner, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNoMinterAssigned, "project has no assigned minter"))
		w := s.do(http.MethodPost, s.path("purchase"), `{"payment":"1"}`, "owner")
		s.Equal(http.StatusUnprocessableEntity, w.Code)
		s.Contains(w.Body.String(), `"no_minter_assigned"`)
		s.Contains(w.Body.String(), `"assignment"`)
	})

	s.Run("anonymous purchase is unauthorized", func() {
		w := s.do(http.MethodPost, s.path("purchase"), `{"payment":"1"}`, "")
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("bad minter in path", func() {
		w := s.do(http.MethodPost, "/minters/nope/projects/0/purchase", `{"payment":"1"}`, "owner")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestPurchaseTo() {
	s.Run("recipient is passed through", func() {
		s.engine.EXPECT().PurchaseTo(gomock.Any(), minterOne, domain.ProjectID(0), owner, additional, amountEq("5")).
			Return(&models.Result{Receipt: &ledger.Receipt{Owner: additional}}, nil)
		w := s.do(http.MethodPost, s.path("purchase-to"), `{"recipient":"`+additional.String()+`","payment":"5"}`, "owner")
		s.Equal(http.StatusCreated, w.Code)
	})

	s.Run("redirect disabled", func() {
		s.engine.EXPECT().PurchaseTo(gomock.Any(), minterOne, domain.ProjectID(0), owner, additional, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeRedirectNotAllowed, "purchase-to is disabled for this project"))
		w := s.do(http.MethodPost, s.path("purchase-to"), `{"recipient":"`+additional.String()+`","payment":"5"}`, "owner")
		s.Equal(http.StatusUnprocessableEntity, w.Code)
		s.Contains(w.Body.String(), `"redirect_not_allowed"`)
	})

	s.Run("zero recipient is rejected", func() {
		w := s.do(http.MethodPost, s.path("purchase-to"), `{"recipient":"`+domain.ZeroAddress.String()+`","payment":"5"}`, "owner")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestPurchaseLimit() {
	var seenCaller domain.Address
	reject := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenCaller = requestcontext.Caller(r.Context())
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, retry later"))
		})
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.engine, s.policy, logger, stubValidator{"owner": owner, "artist": artist},
		WithPurchaseLimit(reject)).Register(s.router)

	s.Run("purchases are throttled after authentication", func() {
		w := s.do(http.MethodPost, s.path("purchase"), `{"payment":"1"}`, "owner")
		s.Equal(http.StatusTooManyRequests, w.Code)
		s.Equal(owner, seenCaller)

		w = s.do(http.MethodPost, s.path("purchase-to"), `{"recipient":"`+additional.String()+`","payment":"1"}`, "owner")
		s.Equal(http.StatusTooManyRequests, w.Code)
	})

	s.Run("policy routes are not throttled", func() {
		s.policy.EXPECT().UpdatePricePerUnit(gomock.Any(), artist, domain.ProjectID(0), amountEq("7")).
			Return(&projectmodels.Project{ID: 0, PricePerUnit: domain.NewAmount(7)}, nil)
		w := s.do(http.MethodPut, s.path("price"), `{"price_per_unit":"7"}`, "artist")
		s.Equal(http.StatusOK, w.Code)
	})
}
