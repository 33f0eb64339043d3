package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/pto-approval-api/internal/constants"
	"github.com/yukikurage/pto-approval-api/internal/logging"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/repository"
	"gorm.io/gorm"
)

// Monday 2 June 2025
var testNow = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

type PTOServiceTestSuite struct {
	suite.Suite
	db         *gorm.DB
	dispatcher *recordingDispatcher
	service    *PTOService
	ctx        context.Context

	department *models.Department
	manager    *models.User
	approver   *models.User
	admin      *models.User
	employee   *models.User
}

func (suite *PTOServiceTestSuite) SetupTest() {
	suite.db = openTestDB(suite.T())
	suite.dispatcher = &recordingDispatcher{}
	suite.ctx = context.Background()
	suite.service = suite.newService(false)

	suite.manager = seedUser(suite.T(), suite.db, userSeed{Name: "manager", Role: models.RoleManager})
	suite.approver = seedUser(suite.T(), suite.db, userSeed{Name: "approver", Role: models.RoleApprover})
	suite.admin = seedUser(suite.T(), suite.db, userSeed{Name: "admin", Role: models.RoleAdmin})
	suite.department = seedDepartment(suite.T(), suite.db, "Engineering", &suite.manager.ID, &suite.approver.ID)
	suite.employee = seedUser(suite.T(), suite.db, userSeed{
		Name:         "employee",
		Balance:      40,
		DepartmentID: &suite.department.ID,
		ManagerID:    &suite.manager.ID,
	})
}

func (suite *PTOServiceTestSuite) newService(reserveOnCreate bool) *PTOService {
	return suite.newServiceWithLedger(reserveOnCreate, NewLedger(8))
}

func (suite *PTOServiceTestSuite) newServiceWithLedger(reserveOnCreate bool, ledger *Ledger) *PTOService {
	return NewPTOService(
		repository.NewUserRepository(suite.db),
		repository.NewPTORequestRepository(suite.db),
		ledger,
		NewRoleGate(),
		suite.dispatcher,
		logging.Discard(),
		PTOServiceOptions{
			ReserveOnCreate: reserveOnCreate,
			Now:             func() time.Time { return testNow },
		},
	)
}

// createRequest files a request for the employee over [start, end] of June 2025
func (suite *PTOServiceTestSuite) createRequest(startDay, endDay int) *models.PTORequest {
	request, err := suite.service.CreateRequest(suite.ctx, CreateRequestInput{
		UserID:    suite.employee.ID,
		StartDate: date(2025, 6, startDay),
		EndDate:   date(2025, 6, endDay),
		Notes:     "Vacation",
	})
	suite.Require().NoError(err)
	return request
}

func (suite *PTOServiceTestSuite) balance(userID uint64) decimal.Decimal {
	return reloadUser(suite.T(), suite.db, userID).PTOBalance
}

func (suite *PTOServiceTestSuite) TestCreateRequest_Success() {
	request := suite.createRequest(9, 13)

	suite.Equal(models.RequestStatusPending, request.Status)
	suite.True(request.Hours.Equal(decimal.NewFromInt(40)))
	suite.Equal("Vacation", request.Notes)

	stored := reloadRequest(suite.T(), suite.db, request.ID)
	suite.Equal(models.RequestStatusPending, stored.Status)
	suite.Equal("2025-06-09", stored.StartDate.Format(constants.DateLayout))

	// Creation never touches the balance
	suite.True(suite.balance(suite.employee.ID).Equal(decimal.NewFromInt(40)))

	suite.Equal(1, suite.dispatcher.count())
	sent := suite.dispatcher.last()
	suite.Equal("employee@example.com", sent.To)
	suite.Equal(models.RequestStatusPending, sent.Status)
	suite.Equal("Your PTO request has been submitted for review.", sent.Message)
}

func (suite *PTOServiceTestSuite) TestCreateRequest_Validation() {
	tests := []struct {
		name    string
		input   CreateRequestInput
		wantErr error
	}{
		{
			name:    "start after end",
			input:   CreateRequestInput{UserID: suite.employee.ID, StartDate: date(2025, 6, 13), EndDate: date(2025, 6, 9)},
			wantErr: ErrInvalidRange,
		},
		{
			name:    "start in the past",
			input:   CreateRequestInput{UserID: suite.employee.ID, StartDate: date(2025, 6, 1), EndDate: date(2025, 6, 3)},
			wantErr: ErrPastStartDate,
		},
		{
			name:    "unknown user",
			input:   CreateRequestInput{UserID: 9999, StartDate: date(2025, 6, 9), EndDate: date(2025, 6, 9)},
			wantErr: ErrUserNotFound,
		},
		{
			name:    "cost above balance",
			input:   CreateRequestInput{UserID: suite.employee.ID, StartDate: date(2025, 6, 9), EndDate: date(2025, 6, 16)},
			wantErr: ErrInsufficientBalance,
		},
		{
			name: "notes too long",
			input: CreateRequestInput{
				UserID:    suite.employee.ID,
				StartDate: date(2025, 6, 9),
				EndDate:   date(2025, 6, 9),
				Notes:     strings.Repeat("x", constants.MaxNotesLength+1),
			},
			wantErr: ErrNotesTooLong,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.CreateRequest(suite.ctx, tt.input)
			suite.ErrorIs(err, tt.wantErr)
		})
	}

	var count int64
	suite.db.Model(&models.PTORequest{}).Count(&count)
	suite.Zero(count)
	suite.Zero(suite.dispatcher.count())
}

func (suite *PTOServiceTestSuite) TestCreateRequest_TodayIsAllowed() {
	request, err := suite.service.CreateRequest(suite.ctx, CreateRequestInput{
		UserID:    suite.employee.ID,
		StartDate: date(2025, 6, 2),
		EndDate:   date(2025, 6, 2),
	})

	suite.Require().NoError(err)
	suite.True(request.Hours.Equal(decimal.NewFromInt(8)))
}

func (suite *PTOServiceTestSuite) TestCreateRequest_PendingAccount() {
	pending := seedUser(suite.T(), suite.db, userSeed{Name: "newcomer", Status: models.UserStatusPending, Balance: 40})

	_, err := suite.service.CreateRequest(suite.ctx, CreateRequestInput{
		UserID:    pending.ID,
		StartDate: date(2025, 6, 9),
		EndDate:   date(2025, 6, 9),
	})

	suite.ErrorIs(err, ErrAccountPending)
}

func (suite *PTOServiceTestSuite) TestCreateRequest_PendingDoesNotReserveByDefault() {
	suite.createRequest(9, 13)
	second := suite.createRequest(16, 20)

	suite.Equal(models.RequestStatusPending, second.Status)
}

func (suite *PTOServiceTestSuite) TestCreateRequest_ReserveOnCreate() {
	suite.service = suite.newService(true)

	suite.createRequest(9, 10)

	_, err := suite.service.CreateRequest(suite.ctx, CreateRequestInput{
		UserID:    suite.employee.ID,
		StartDate: date(2025, 6, 16),
		EndDate:   date(2025, 6, 19),
	})
	suite.ErrorIs(err, ErrInsufficientBalance)

	request, err := suite.service.CreateRequest(suite.ctx, CreateRequestInput{
		UserID:    suite.employee.ID,
		StartDate: date(2025, 6, 16),
		EndDate:   date(2025, 6, 18),
	})
	suite.Require().NoError(err)
	suite.True(request.Hours.Equal(decimal.NewFromInt(24)))
}

func (suite *PTOServiceTestSuite) TestDecideRequest_ManagerApproves() {
	request := suite.createRequest(9, 13)

	decided, err := suite.service.DecideRequest(suite.ctx, request.ID, suite.manager.ID, models.RequestStatusApproved)
	suite.Require().NoError(err)

	suite.Equal(models.RequestStatusApproved, decided.Status)
	suite.Require().NotNil(decided.DecidedByID)
	suite.Equal(suite.manager.ID, *decided.DecidedByID)
	suite.NotNil(decided.DecidedAt)

	stored := reloadRequest(suite.T(), suite.db, request.ID)
	suite.Equal(models.RequestStatusApproved, stored.Status)
	suite.Require().NotNil(stored.DecidedByID)
	suite.Equal(suite.manager.ID, *stored.DecidedByID)

	suite.True(suite.balance(suite.employee.ID).IsZero())

	sent := suite.dispatcher.last()
	suite.Equal(models.RequestStatusApproved, sent.Status)
	suite.Equal("Your PTO request has been approved by your manager.", sent.Message)
}

func (suite *PTOServiceTestSuite) TestDecideRequest_ApproverDenies() {
	request := suite.createRequest(9, 13)

	decided, err := suite.service.DecideRequest(suite.ctx, request.ID, suite.approver.ID, models.RequestStatusDenied)
	suite.Require().NoError(err)

	suite.Equal(models.RequestStatusDenied, decided.Status)
	suite.True(suite.balance(suite.employee.ID).Equal(decimal.NewFromInt(40)))
	suite.Equal("Your PTO request has been denied by the department approver.", suite.dispatcher.last().Message)
}

func (suite *PTOServiceTestSuite) TestDecideRequest_AdminApprovesAnyone() {
	outsider := seedUser(suite.T(), suite.db, userSeed{Name: "outsider", Balance: 16})
	request, err := suite.service.CreateRequest(suite.ctx, CreateRequestInput{
		UserID:    outsider.ID,
		StartDate: date(2025, 6, 12),
		EndDate:   date(2025, 6, 13),
	})
	suite.Require().NoError(err)

	_, err = suite.service.DecideRequest(suite.ctx, request.ID, suite.admin.ID, models.RequestStatusApproved)
	suite.Require().NoError(err)

	suite.True(suite.balance(outsider.ID).IsZero())
	suite.Equal("Your PTO request has been approved by the admin.", suite.dispatcher.last().Message)
}

func (suite *PTOServiceTestSuite) TestDecideRequest_SecondDecisionRejected() {
	request := suite.createRequest(9, 10)

	_, err := suite.service.DecideRequest(suite.ctx, request.ID, suite.manager.ID, models.RequestStatusApproved)
	suite.Require().NoError(err)

	_, err = suite.service.DecideRequest(suite.ctx, request.ID, suite.admin.ID, models.RequestStatusApproved)
	suite.ErrorIs(err, ErrInvalidState)

	_, err = suite.service.DecideRequest(suite.ctx, request.ID, suite.admin.ID, models.RequestStatusDenied)
	suite.ErrorIs(err, ErrInvalidState)

	// Debited exactly once
	suite.True(suite.balance(suite.employee.ID).Equal(decimal.NewFromInt(24)))
	suite.Equal(models.RequestStatusApproved, reloadRequest(suite.T(), suite.db, request.ID).Status)
}

func (suite *PTOServiceTestSuite) TestDecideRequest_ConcurrentApprovals() {
	request := suite.createRequest(9, 13)

	deciders := []uint64{suite.manager.ID, suite.approver.ID, suite.admin.ID, suite.manager.ID, suite.admin.ID}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)

	for _, actorID := range deciders {
		wg.Add(1)
		go func(actorID uint64) {
			defer wg.Done()
			_, err := suite.service.DecideRequest(suite.ctx, request.ID, actorID, models.RequestStatusApproved)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrInvalidState):
				conflicts++
			default:
				others = append(others, err)
			}
		}(actorID)
	}
	wg.Wait()

	suite.Empty(others)
	suite.Equal(1, successes)
	suite.Equal(len(deciders)-1, conflicts)
	suite.True(suite.balance(suite.employee.ID).IsZero())
}

func (suite *PTOServiceTestSuite) TestDecideRequest_BalanceCheckedAtApproval() {
	first := suite.createRequest(9, 13)
	second := suite.createRequest(16, 20)

	_, err := suite.service.DecideRequest(suite.ctx, first.ID, suite.manager.ID, models.RequestStatusApproved)
	suite.Require().NoError(err)

	_, err = suite.service.DecideRequest(suite.ctx, second.ID, suite.manager.ID, models.RequestStatusApproved)
	suite.ErrorIs(err, ErrInsufficientBalance)
	suite.NotContains(err.Error(), "available")

	// The failed approval rolled back its status change
	suite.Equal(models.RequestStatusPending, reloadRequest(suite.T(), suite.db, second.ID).Status)
	suite.True(suite.balance(suite.employee.ID).IsZero())

	// It can still be denied
	_, err = suite.service.DecideRequest(suite.ctx, second.ID, suite.manager.ID, models.RequestStatusDenied)
	suite.NoError(err)
}

func (suite *PTOServiceTestSuite) TestDecideRequest_DebitsHoursShownAtCreation() {
	request := suite.createRequest(9, 13)
	suite.True(request.Hours.Equal(decimal.NewFromInt(40)))

	// Day length changed between submission and approval
	suite.service = suite.newServiceWithLedger(false, NewLedger(10))

	decided, err := suite.service.DecideRequest(suite.ctx, request.ID, suite.manager.ID, models.RequestStatusApproved)
	suite.Require().NoError(err)
	suite.True(decided.Hours.Equal(decimal.NewFromInt(40)))
	suite.True(suite.balance(suite.employee.ID).IsZero())
	suite.True(decided.User.PTOBalance.IsZero())
}

func (suite *PTOServiceTestSuite) TestCreateRequest_ReservedWeekBlocksExtraDay() {
	suite.service = suite.newService(true)

	suite.createRequest(9, 13)

	_, err := suite.service.CreateRequest(suite.ctx, CreateRequestInput{
		UserID:    suite.employee.ID,
		StartDate: date(2025, 6, 16),
		EndDate:   date(2025, 6, 16),
	})
	suite.ErrorIs(err, ErrInsufficientBalance)
}

func (suite *PTOServiceTestSuite) TestQuoteRequest() {
	quote, err := suite.service.QuoteRequest(suite.ctx, suite.employee.ID, date(2025, 6, 13), date(2025, 6, 16))
	suite.Require().NoError(err)
	suite.Equal(2, quote.BusinessDays)
	suite.True(quote.HoursPerDay.Equal(decimal.NewFromInt(8)))
	suite.True(quote.Hours.Equal(decimal.NewFromInt(16)))
	suite.True(quote.Available.Equal(decimal.NewFromInt(40)))

	suite.service = suite.newService(true)
	suite.createRequest(9, 11)

	quote, err = suite.service.QuoteRequest(suite.ctx, suite.employee.ID, date(2025, 6, 16), date(2025, 6, 20))
	suite.Require().NoError(err)
	suite.True(quote.Available.Equal(decimal.NewFromInt(16)))

	_, err = suite.service.QuoteRequest(suite.ctx, suite.employee.ID, date(2025, 6, 20), date(2025, 6, 16))
	suite.ErrorIs(err, ErrInvalidRange)

	_, err = suite.service.QuoteRequest(suite.ctx, 999, date(2025, 6, 16), date(2025, 6, 20))
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *PTOServiceTestSuite) TestDecideRequest_Forbidden() {
	request := suite.createRequest(9, 13)

	otherManager := seedUser(suite.T(), suite.db, userSeed{Name: "other-manager", Role: models.RoleManager})
	otherApprover := seedUser(suite.T(), suite.db, userSeed{Name: "other-approver", Role: models.RoleApprover})
	seedDepartment(suite.T(), suite.db, "Sales", nil, &otherApprover.ID)
	colleague := seedUser(suite.T(), suite.db, userSeed{Name: "colleague", DepartmentID: &suite.department.ID})

	for _, actorID := range []uint64{otherManager.ID, otherApprover.ID, colleague.ID, suite.employee.ID} {
		_, err := suite.service.DecideRequest(suite.ctx, request.ID, actorID, models.RequestStatusApproved)
		suite.ErrorIs(err, ErrForbidden)
	}

	suite.Equal(models.RequestStatusPending, reloadRequest(suite.T(), suite.db, request.ID).Status)
	suite.True(suite.balance(suite.employee.ID).Equal(decimal.NewFromInt(40)))
}

func (suite *PTOServiceTestSuite) TestDecideRequest_NotFoundAndInvalidStatus() {
	request := suite.createRequest(9, 9)

	_, err := suite.service.DecideRequest(suite.ctx, 9999, suite.admin.ID, models.RequestStatusApproved)
	suite.ErrorIs(err, ErrRequestNotFound)

	_, err = suite.service.DecideRequest(suite.ctx, request.ID, 9999, models.RequestStatusApproved)
	suite.ErrorIs(err, ErrActorNotFound)

	_, err = suite.service.DecideRequest(suite.ctx, request.ID, suite.admin.ID, models.RequestStatusPending)
	suite.ErrorIs(err, ErrInvalidStatus)
}

func (suite *PTOServiceTestSuite) TestDecideRequest_NotificationFailureKeepsDecision() {
	request := suite.createRequest(9, 13)
	suite.dispatcher.err = errors.New("smtp down")

	decided, err := suite.service.DecideRequest(suite.ctx, request.ID, suite.manager.ID, models.RequestStatusApproved)
	suite.Require().NoError(err)
	suite.Equal(models.RequestStatusApproved, decided.Status)

	suite.Equal(models.RequestStatusApproved, reloadRequest(suite.T(), suite.db, request.ID).Status)
	suite.True(suite.balance(suite.employee.ID).IsZero())
}

func (suite *PTOServiceTestSuite) TestCancelRequest() {
	request := suite.createRequest(9, 13)

	_, err := suite.service.CancelRequest(suite.ctx, request.ID, suite.manager.ID)
	suite.ErrorIs(err, ErrForbidden)

	cancelled, err := suite.service.CancelRequest(suite.ctx, request.ID, suite.employee.ID)
	suite.Require().NoError(err)
	suite.Equal(models.RequestStatusDenied, cancelled.Status)
	suite.True(suite.balance(suite.employee.ID).Equal(decimal.NewFromInt(40)))
	suite.Equal("Your PTO request has been cancelled.", suite.dispatcher.last().Message)
	suite.Equal(models.RequestStatusDenied, suite.dispatcher.last().Status)

	_, err = suite.service.CancelRequest(suite.ctx, request.ID, suite.employee.ID)
	suite.ErrorIs(err, ErrInvalidState)

	_, err = suite.service.CancelRequest(suite.ctx, 9999, suite.employee.ID)
	suite.ErrorIs(err, ErrRequestNotFound)
}

func (suite *PTOServiceTestSuite) TestCancelRequest_ApprovedIsTerminal() {
	request := suite.createRequest(9, 13)
	_, err := suite.service.DecideRequest(suite.ctx, request.ID, suite.manager.ID, models.RequestStatusApproved)
	suite.Require().NoError(err)

	_, err = suite.service.CancelRequest(suite.ctx, request.ID, suite.employee.ID)
	suite.ErrorIs(err, ErrInvalidState)
	suite.True(suite.balance(suite.employee.ID).IsZero())
}

func (suite *PTOServiceTestSuite) TestGetRequest_Visibility() {
	request := suite.createRequest(9, 13)
	outsider := seedUser(suite.T(), suite.db, userSeed{Name: "outsider"})

	for _, actorID := range []uint64{suite.employee.ID, suite.manager.ID, suite.approver.ID, suite.admin.ID} {
		found, err := suite.service.GetRequest(suite.ctx, request.ID, actorID)
		suite.Require().NoError(err)
		suite.Equal(request.ID, found.ID)
		suite.Equal("employee", found.User.Name)
	}

	_, err := suite.service.GetRequest(suite.ctx, request.ID, outsider.ID)
	suite.ErrorIs(err, ErrRequestNotFound)
}

func (suite *PTOServiceTestSuite) TestListRequests_Scopes() {
	own := suite.createRequest(9, 10)

	// Request from another department without a manager
	outsider := seedUser(suite.T(), suite.db, userSeed{Name: "outsider", Balance: 40})
	_, err := suite.service.CreateRequest(suite.ctx, CreateRequestInput{
		UserID:    outsider.ID,
		StartDate: date(2025, 6, 9),
		EndDate:   date(2025, 6, 9),
	})
	suite.Require().NoError(err)

	mine, total, err := suite.service.ListOwnRequests(suite.ctx, suite.employee.ID, ListRequestsInput{Page: 1, PageSize: 20})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(own.ID, mine[0].ID)

	team, total, err := suite.service.ListTeamRequests(suite.ctx, suite.manager.ID, ListRequestsInput{Page: 1, PageSize: 20})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(own.ID, team[0].ID)

	department, total, err := suite.service.ListDepartmentRequests(suite.ctx, suite.approver.ID, ListRequestsInput{Page: 1, PageSize: 20})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(own.ID, department[0].ID)
	suite.Require().NotNil(department[0].User.Department)
	suite.Equal("Engineering", department[0].User.Department.Name)

	all, total, err := suite.service.ListAllRequests(suite.ctx, ListRequestsInput{Page: 1, PageSize: 20})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(all, 2)

	approved := models.RequestStatusApproved
	none, total, err := suite.service.ListAllRequests(suite.ctx, ListRequestsInput{Status: &approved})
	suite.Require().NoError(err)
	suite.Zero(total)
	suite.Empty(none)
}

func (suite *PTOServiceTestSuite) TestListOwnRequests_NewestFirstAndPaginated() {
	first := suite.createRequest(9, 9)
	second := suite.createRequest(10, 10)
	third := suite.createRequest(11, 11)

	page, total, err := suite.service.ListOwnRequests(suite.ctx, suite.employee.ID, ListRequestsInput{Page: 1, PageSize: 2})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(page, 2)
	suite.Equal(third.ID, page[0].ID)
	suite.Equal(second.ID, page[1].ID)

	page, _, err = suite.service.ListOwnRequests(suite.ctx, suite.employee.ID, ListRequestsInput{Page: 2, PageSize: 2})
	suite.Require().NoError(err)
	suite.Require().Len(page, 1)
	suite.Equal(first.ID, page[0].ID)
}

func TestPTOServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PTOServiceTestSuite))
}

func TestDecisionMessage(t *testing.T) {
	cases := map[models.UserRole]string{
		models.RoleAdmin:    "Your PTO request has been approved by the admin.",
		models.RoleManager:  "Your PTO request has been approved by your manager.",
		models.RoleApprover: "Your PTO request has been approved by the department approver.",
		models.RoleUser:     "Your PTO request has been approved.",
	}

	for role, want := range cases {
		if got := decisionMessage(role, models.RequestStatusApproved); got != want {
			t.Errorf("decisionMessage(%s) = %q, want %q", role, got, want)
		}
	}
}
