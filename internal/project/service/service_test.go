package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"mintgate/internal/authority"
	"mintgate/internal/project/metrics"
	"mintgate/internal/project/models"
	"mintgate/internal/project/service/mocks"
	"mintgate/internal/project/store"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	audit "mintgate/pkg/platform/audit"
	auditmemory "mintgate/pkg/platform/audit/store/memory"
	"mintgate/pkg/platform/audit/publisher"
	"mintgate/pkg/platform/sentinel"
)

var (
	superAdmin = domain.MustParseAddress("0x00000000000000000000000000000000000000ad")
	artist     = domain.MustParseAddress("0x00000000000000000000000000000000000000a1")
	stranger   = domain.MustParseAddress("0x00000000000000000000000000000000000000ff")
	daiAddress = domain.MustParseAddress("0x6b175474e89094c44da98b954eedeac495271d0f")
)

const projectOne domain.ProjectID = 1

// ServiceSuite runs the policy operations against the in-memory store and the
// real role authority.
type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	projects *store.InMemory
	events   *auditmemory.InMemoryStore
	metrics  *metrics.Metrics
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.projects = store.NewInMemory()
	s.events = auditmemory.NewInMemoryStore()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())

	p, err := models.NewProject(projectOne, "project one", artist, models.NativeCurrency("ETH"), time.Now())
	s.Require().NoError(err)
	p.PricePerUnit = domain.MustParseAmount("1000000000000000000")
	s.Require().NoError(s.projects.Create(s.ctx, p))

	s.service = New(s.projects, authority.New(superAdmin, s.projects),
		WithAuditPublisher(publisher.NewPublisher(s.events)),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) TestUpdatePricePerUnit() {
	s.Run("artist raises price from 1.0 to 1.1", func() {
		newPrice := domain.MustParseAmount("1100000000000000000")
		p, err := s.service.UpdatePricePerUnit(s.ctx, artist, projectOne, newPrice)
		s.Require().NoError(err)
		s.Equal("1100000000000000000", p.PricePerUnit.String())

		stored, err := s.service.GetProject(s.ctx, projectOne)
		s.Require().NoError(err)
		s.Equal(0, stored.PricePerUnit.Cmp(newPrice))

		events, err := s.events.ListByProject(s.ctx, projectOne)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventPriceUpdated), events[0].Action)
		s.Equal("1100000000000000000", events[0].Value)
		s.Equal(artist, events[0].Actor)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.PriceUpdates))
	})

	s.Run("zero is an accepted price", func() {
		p, err := s.service.UpdatePricePerUnit(s.ctx, artist, projectOne, domain.NewAmount(0))
		s.Require().NoError(err)
		s.True(p.PricePerUnit.IsZero())
	})

	s.Run("super-admin is rejected", func() {
		_, err := s.service.UpdatePricePerUnit(s.ctx, superAdmin, projectOne, domain.NewAmount(5))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotArtist))
		s.Equal(dErrors.CategoryAuthorization, dErrors.CategoryOf(err))
	})

	s.Run("stranger is rejected and state is unchanged", func() {
		before, _ := s.service.GetProject(s.ctx, projectOne)
		_, err := s.service.UpdatePricePerUnit(s.ctx, stranger, projectOne, domain.NewAmount(5))
		s.True(dErrors.HasCode(err, dErrors.CodeNotArtist))
		after, _ := s.service.GetProject(s.ctx, projectOne)
		s.Equal(0, before.PricePerUnit.Cmp(after.PricePerUnit))
	})

	s.Run("unknown project", func() {
		_, err := s.service.UpdatePricePerUnit(s.ctx, artist, 42, domain.NewAmount(5))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestTogglePurchaseToDisabled() {
	s.Run("super-admin flips the flag both ways", func() {
		p, err := s.service.TogglePurchaseToDisabled(s.ctx, superAdmin, projectOne)
		s.Require().NoError(err)
		s.True(p.PurchaseToDisabled)

		p, err = s.service.TogglePurchaseToDisabled(s.ctx, superAdmin, projectOne)
		s.Require().NoError(err)
		s.False(p.PurchaseToDisabled)

		events, _ := s.events.ListByProject(s.ctx, projectOne)
		s.Require().Len(events, 2)
		s.Equal("true", events[0].Value)
		s.Equal("false", events[1].Value)
		s.Equal(audit.CategoryPolicy, events[1].Category)
	})

	s.Run("artist is rejected", func() {
		_, err := s.service.TogglePurchaseToDisabled(s.ctx, artist, projectOne)
		s.True(dErrors.HasCode(err, dErrors.CodeNotSuperAdmin))
	})

	s.Run("unknown project", func() {
		_, err := s.service.TogglePurchaseToDisabled(s.ctx, superAdmin, 42)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestUpdateCurrency() {
	dai := models.Currency{Symbol: "DAI", Address: daiAddress}

	s.Run("artist switches to a token", func() {
		p, err := s.service.UpdateCurrency(s.ctx, artist, projectOne, dai)
		s.Require().NoError(err)
		s.Equal(dai, p.Currency)
		s.False(p.Currency.IsNative())
	})

	s.Run("super-admin may switch back", func() {
		p, err := s.service.UpdateCurrency(s.ctx, superAdmin, projectOne, models.NativeCurrency("ETH"))
		s.Require().NoError(err)
		s.True(p.Currency.IsNative())
	})

	s.Run("stranger is rejected", func() {
		_, err := s.service.UpdateCurrency(s.ctx, stranger, projectOne, dai)
		s.True(dErrors.HasCode(err, dErrors.CodeNotArtist))
	})

	s.Run("zero address is reserved for the native symbol", func() {
		_, err := s.service.UpdateCurrency(s.ctx, artist, projectOne, models.Currency{Symbol: "USDC", Address: domain.ZeroAddress})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = s.service.UpdateCurrency(s.ctx, artist, projectOne, models.Currency{Symbol: "ETH", Address: daiAddress})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		p, err := s.service.GetProject(s.ctx, projectOne)
		s.Require().NoError(err)
		s.True(p.Currency.IsNativeFor("ETH"), "rejected updates leave the currency unchanged")
	})
}

func (s *ServiceSuite) TestConcurrentPriceUpdatesSerialise() {
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.UpdatePricePerUnit(s.ctx, artist, projectOne, domain.NewAmount(uint64(i)))
			s.NoError(err)
		}()
	}
	wg.Wait()

	events, err := s.events.ListByProject(s.ctx, projectOne)
	s.Require().NoError(err)
	s.Len(events, 20)
}

// MockedServiceSuite covers store failures and notification failures.
type MockedServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	authority *mocks.MockAuthority
	publisher *mocks.MockAuditPublisher
	service   *Service
}

func TestMockedServiceSuite(t *testing.T) {
	suite.Run(t, new(MockedServiceSuite))
}

func (s *MockedServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.authority = mocks.NewMockAuthority(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, s.authority, WithAuditPublisher(s.publisher))
}

func (s *MockedServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *MockedServiceSuite) TestStoreFailureIsInternal() {
	ctx := context.Background()
	s.authority.EXPECT().IsArtist(gomock.Any(), projectOne, artist).Return(true, nil)
	s.store.EXPECT().Execute(gomock.Any(), projectOne, gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))

	_, err := s.service.UpdatePricePerUnit(ctx, artist, projectOne, domain.NewAmount(1))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *MockedServiceSuite) TestNotFoundFromStore() {
	ctx := context.Background()
	s.authority.EXPECT().IsSuperAdmin(superAdmin).Return(true)
	s.store.EXPECT().Execute(gomock.Any(), domain.ProjectID(9), gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.TogglePurchaseToDisabled(ctx, superAdmin, 9)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *MockedServiceSuite) TestPublishFailureDoesNotRollBack() {
	ctx := context.Background()
	updated := &models.Project{ID: projectOne, PricePerUnit: domain.NewAmount(7)}
	s.authority.EXPECT().IsArtist(gomock.Any(), projectOne, artist).Return(true, nil)
	s.store.EXPECT().Execute(gomock.Any(), projectOne, gomock.Any(), gomock.Any()).Return(updated, nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	p, err := s.service.UpdatePricePerUnit(ctx, artist, projectOne, domain.NewAmount(7))
	s.Require().NoError(err)
	s.Equal("7", p.PricePerUnit.String())
}

func (s *MockedServiceSuite) TestUpdateCurrencyUsesLedgerAuthority() {
	ctx := context.Background()
	s.authority.EXPECT().RequireArtistOrSuperAdmin(gomock.Any(), projectOne, stranger).
		Return(dErrors.New(dErrors.CodeNotArtist, "only the project artist or super-admin may perform this action"))

	_, err := s.service.UpdateCurrency(ctx, stranger, projectOne, models.NativeCurrency("ETH"))
	s.True(dErrors.HasCode(err, dErrors.CodeNotArtist))
}

func (s *MockedServiceSuite) TestAuthorityFailurePropagates() {
	ctx := context.Background()
	s.authority.EXPECT().IsArtist(gomock.Any(), projectOne, artist).
		Return(false, dErrors.New(dErrors.CodeInternal, "failed to load project"))

	_, err := s.service.UpdatePricePerUnit(ctx, artist, projectOne, domain.NewAmount(7))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
