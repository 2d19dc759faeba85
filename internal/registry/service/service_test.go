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
	projectmodels "mintgate/internal/project/models"
	projectstore "mintgate/internal/project/store"
	"mintgate/internal/registry/metrics"
	"mintgate/internal/registry/models"
	"mintgate/internal/registry/service/mocks"
	"mintgate/internal/registry/store"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/audit/publisher"
	auditmemory "mintgate/pkg/platform/audit/store/memory"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/requestcontext"
)

var (
	superAdmin = domain.MustParseAddress("0x00000000000000000000000000000000000000ad")
	artist     = domain.MustParseAddress("0x00000000000000000000000000000000000000a1")

	minterOne   = domain.MinterID(domain.MustParseAddress("0x00000000000000000000000000000000000000b1"))
	minterTwo   = domain.MinterID(domain.MustParseAddress("0x00000000000000000000000000000000000000b2"))
	minterThree = domain.MinterID(domain.MustParseAddress("0x00000000000000000000000000000000000000b3"))
)

const (
	projectOne   domain.ProjectID = 0
	projectTwo   domain.ProjectID = 1
	projectThree domain.ProjectID = 2
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	registry *store.InMemory
	events   *auditmemory.InMemoryStore
	metrics  *metrics.Metrics
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s.registry = store.NewInMemory()
	s.events = auditmemory.NewInMemoryStore()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())

	projects := projectstore.NewInMemory()
	for _, id := range []domain.ProjectID{projectOne, projectTwo, projectThree} {
		p, err := projectmodels.NewProject(id, "project", artist, projectmodels.NativeCurrency("ETH"), time.Now())
		s.Require().NoError(err)
		s.Require().NoError(projects.Create(s.ctx, p))
	}

	s.service = New(s.registry, authority.New(superAdmin, projects), projects,
		WithAuditPublisher(publisher.NewPublisher(s.events)),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) approve(minters ...domain.MinterID) {
	for _, m := range minters {
		s.Require().NoError(s.service.AddApprovedMinter(s.ctx, superAdmin, m))
	}
}

func (s *ServiceSuite) TestAddApprovedMinter() {
	s.Run("super-admin approves a minter", func() {
		s.Require().NoError(s.service.AddApprovedMinter(s.ctx, superAdmin, minterOne))

		ok, err := s.service.IsApprovedMinter(s.ctx, minterOne)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.ApprovedCount))

		events, _ := s.events.ListRecent(s.ctx, 1)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventMinterApproved), events[0].Action)
		s.Equal(minterOne, events[0].Minter)
		s.Equal(audit.CategoryRegistry, events[0].Category)
	})

	s.Run("approving twice is rejected", func() {
		err := s.service.AddApprovedMinter(s.ctx, superAdmin, minterOne)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyApproved))
		s.Equal(dErrors.CategoryAssignment, dErrors.CategoryOf(err))
	})

	s.Run("artist cannot approve", func() {
		err := s.service.AddApprovedMinter(s.ctx, artist, minterTwo)
		s.True(dErrors.HasCode(err, dErrors.CodeNotSuperAdmin))
		ok, _ := s.service.IsApprovedMinter(s.ctx, minterTwo)
		s.False(ok)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues(opAdd, string(dErrors.CodeNotSuperAdmin))))
	})
}

func (s *ServiceSuite) TestRemoveApprovedMinter() {
	s.approve(minterOne, minterTwo)
	_, err := s.service.SetMinterForProject(s.ctx, superAdmin, projectOne, minterOne)
	s.Require().NoError(err)

	s.Run("assigned minter cannot be removed", func() {
		err := s.service.RemoveApprovedMinter(s.ctx, superAdmin, minterOne)
		s.True(dErrors.HasCode(err, dErrors.CodeStillAssigned))
		ok, _ := s.service.IsApprovedMinter(s.ctx, minterOne)
		s.True(ok)
	})

	s.Run("unassigned minter is removed", func() {
		s.Require().NoError(s.service.RemoveApprovedMinter(s.ctx, superAdmin, minterTwo))
		ok, _ := s.service.IsApprovedMinter(s.ctx, minterTwo)
		s.False(ok)
	})

	s.Run("removing an unknown minter is rejected", func() {
		err := s.service.RemoveApprovedMinter(s.ctx, superAdmin, minterThree)
		s.True(dErrors.HasCode(err, dErrors.CodeMinterNotApproved))
	})

	s.Run("artist cannot remove", func() {
		err := s.service.RemoveApprovedMinter(s.ctx, artist, minterOne)
		s.True(dErrors.HasCode(err, dErrors.CodeNotSuperAdmin))
	})
}

func (s *ServiceSuite) TestSetMinterForProject() {
	s.approve(minterOne, minterTwo)

	s.Run("unassigned project reports none", func() {
		_, ok, err := s.service.GetAssignedMinter(s.ctx, projectThree)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("assigns an approved minter", func() {
		a, err := s.service.SetMinterForProject(s.ctx, superAdmin, projectOne, minterOne)
		s.Require().NoError(err)
		s.Equal(minterOne, a.Minter)

		m, ok, err := s.service.GetAssignedMinter(s.ctx, projectOne)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(minterOne, m)
	})

	s.Run("reassignment supersedes the prior minter", func() {
		_, err := s.service.SetMinterForProject(s.ctx, superAdmin, projectOne, minterTwo)
		s.Require().NoError(err)

		m, _, err := s.service.GetAssignedMinter(s.ctx, projectOne)
		s.Require().NoError(err)
		s.Equal(minterTwo, m)

		events, _ := s.events.ListRecent(s.ctx, 1)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventMinterAssigned), events[0].Action)
		s.Equal(minterTwo, events[0].Minter)
		s.Equal(minterOne.String(), events[0].Value)

		// The old minter is free again.
		s.NoError(s.service.RemoveApprovedMinter(s.ctx, superAdmin, minterOne))
	})

	s.Run("unapproved minter is rejected", func() {
		_, err := s.service.SetMinterForProject(s.ctx, superAdmin, projectTwo, minterThree)
		s.True(dErrors.HasCode(err, dErrors.CodeMinterNotApproved))
		_, ok, _ := s.service.GetAssignedMinter(s.ctx, projectTwo)
		s.False(ok)
	})

	s.Run("unknown project is rejected", func() {
		_, err := s.service.SetMinterForProject(s.ctx, superAdmin, 99, minterTwo)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("artist cannot assign", func() {
		_, err := s.service.SetMinterForProject(s.ctx, artist, projectTwo, minterTwo)
		s.True(dErrors.HasCode(err, dErrors.CodeNotSuperAdmin))
	})
}

func (s *ServiceSuite) TestListings() {
	s.approve(minterTwo, minterOne)
	_, err := s.service.SetMinterForProject(s.ctx, superAdmin, projectTwo, minterTwo)
	s.Require().NoError(err)
	_, err = s.service.SetMinterForProject(s.ctx, superAdmin, projectOne, minterOne)
	s.Require().NoError(err)

	approved, err := s.service.ListApprovedMinters(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(approved, 2)
	s.Equal(minterOne, approved[0].Minter)

	assignments, err := s.service.ListAssignments(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(assignments, 2)
	s.Equal(projectOne, assignments[0].ProjectID)
	s.Equal(minterTwo, assignments[1].Minter)
}

func (s *ServiceSuite) TestConcurrentReassignmentNeverDualAssigns() {
	s.approve(minterOne, minterTwo)

	var wg sync.WaitGroup
	for i := range 30 {
		m := minterOne
		if i%2 == 0 {
			m = minterTwo
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.SetMinterForProject(s.ctx, superAdmin, projectOne, m)
			s.NoError(err)
		}()
	}
	wg.Wait()

	assignments, err := s.service.ListAssignments(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(assignments, 1)
}

// MockedServiceSuite covers backend failures.
type MockedServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	authority *mocks.MockAuthority
	projects  *mocks.MockProjectLookup
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
	s.projects = mocks.NewMockProjectLookup(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, s.authority, s.projects, WithAuditPublisher(s.publisher))
}

func (s *MockedServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *MockedServiceSuite) TestAssignmentLookupFailureIsInternal() {
	s.store.EXPECT().GetAssignment(gomock.Any(), projectOne).Return(nil, errors.New("connection reset"))

	_, _, err := s.service.GetAssignedMinter(context.Background(), projectOne)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *MockedServiceSuite) TestProjectLookupFailureIsInternal() {
	s.authority.EXPECT().IsSuperAdmin(superAdmin).Return(true)
	s.projects.EXPECT().FindByID(gomock.Any(), projectOne).Return(nil, errors.New("timeout"))

	_, err := s.service.SetMinterForProject(context.Background(), superAdmin, projectOne, minterOne)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *MockedServiceSuite) TestStoreNotFoundMeansNotApproved() {
	s.authority.EXPECT().IsSuperAdmin(superAdmin).Return(true)
	s.projects.EXPECT().FindByID(gomock.Any(), projectOne).Return(&projectmodels.Project{ID: projectOne}, nil)
	s.store.EXPECT().SetAssignment(gomock.Any(), gomock.Any()).Return(domain.MinterID(""), sentinel.ErrNotFound)

	_, err := s.service.SetMinterForProject(context.Background(), superAdmin, projectOne, minterOne)
	s.True(dErrors.HasCode(err, dErrors.CodeMinterNotApproved))
}

func (s *MockedServiceSuite) TestPublishFailureDoesNotRollBack() {
	s.authority.EXPECT().IsSuperAdmin(superAdmin).Return(true)
	s.projects.EXPECT().FindByID(gomock.Any(), projectOne).Return(&projectmodels.Project{ID: projectOne}, nil)
	s.store.EXPECT().SetAssignment(gomock.Any(), gomock.AssignableToTypeOf(models.Assignment{})).
		Return(domain.MinterID(""), nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	a, err := s.service.SetMinterForProject(context.Background(), superAdmin, projectOne, minterOne)
	s.Require().NoError(err)
	s.Equal(minterOne, a.Minter)
}
