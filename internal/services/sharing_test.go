package services

import (
	"testing"

	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	"github.com/monocle-dev/expense-tracker/internal/events"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/monocle-dev/expense-tracker/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SharingServiceTestSuite struct {
	serviceSuite

	alice *models.User
	bob   *models.User
	carol *models.User
	lunch *models.Expense
}

func (suite *SharingServiceTestSuite) SetupTest() {
	suite.serviceSuite.SetupTest()

	suite.alice = suite.register("alice")
	suite.bob = suite.register("bob")
	suite.carol = suite.register("carol")

	food := suite.category(suite.alice, "Food")
	suite.lunch = suite.expense(suite.alice, food, "20.00")
}

func (suite *SharingServiceTestSuite) updateStatus(caller *models.User, share *models.ShareView, status models.ShareStatus) error {
	_, err := suite.sharing.UpdateStatus(suite.ctx, caller.ID, share.ID, status)
	return err
}

func (suite *SharingServiceTestSuite) TestFullLifecycle() {
	share := suite.share(suite.alice, suite.lunch, suite.bob, "50.00")
	assert.Equal(suite.T(), models.ShareStatusPending, share.Status)
	assert.Equal(suite.T(), suite.alice.ID, share.OwnerID)

	accepted, err := suite.sharing.UpdateStatus(suite.ctx, suite.bob.ID, share.ID, models.ShareStatusAccepted)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ShareStatusAccepted, accepted.Status)

	settled, err := suite.sharing.UpdateStatus(suite.ctx, suite.alice.ID, share.ID, models.ShareStatusSettled)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ShareStatusSettled, settled.Status)

	for _, status := range []models.ShareStatus{
		models.ShareStatusPending,
		models.ShareStatusAccepted,
		models.ShareStatusRejected,
		models.ShareStatusSettled,
	} {
		for _, caller := range []*models.User{suite.alice, suite.bob} {
			err := suite.updateStatus(caller, share, status)
			assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidTransition, "%s by %d", status, caller.ID)
		}
	}

	assert.Equal(suite.T(), []string{
		events.TypeShareCreated,
		events.TypeShareStatusChanged,
		events.TypeShareStatusChanged,
	}, suite.published.types())

	last := suite.published.last()
	assert.ElementsMatch(suite.T(), []uint{suite.alice.ID, suite.bob.ID}, last.Recipients)
	payload := last.Payload.(events.SharePayload)
	assert.Equal(suite.T(), "SETTLED", payload.Status)
	assert.Equal(suite.T(), "ACCEPTED", payload.PreviousStatus)
	assert.Equal(suite.T(), "50.00", payload.SplitPercentage)
}

func (suite *SharingServiceTestSuite) TestOnlyRecipientAnswersPending() {
	share := suite.share(suite.alice, suite.lunch, suite.bob, "50")

	assert.ErrorIs(suite.T(), suite.updateStatus(suite.alice, share, models.ShareStatusAccepted), apperrors.ErrForbidden)
	assert.ErrorIs(suite.T(), suite.updateStatus(suite.alice, share, models.ShareStatusRejected), apperrors.ErrForbidden)
	assert.ErrorIs(suite.T(), suite.updateStatus(suite.bob, share, models.ShareStatusSettled), apperrors.ErrInvalidTransition)
	assert.ErrorIs(suite.T(), suite.updateStatus(suite.bob, share, models.ShareStatusPending), apperrors.ErrInvalidTransition)

	assert.NoError(suite.T(), suite.updateStatus(suite.bob, share, models.ShareStatusRejected))
}

func (suite *SharingServiceTestSuite) TestRejectedIsTerminal() {
	share := suite.share(suite.alice, suite.lunch, suite.bob, "50")
	require.NoError(suite.T(), suite.updateStatus(suite.bob, share, models.ShareStatusRejected))

	for _, status := range []models.ShareStatus{models.ShareStatusAccepted, models.ShareStatusSettled, models.ShareStatusPending} {
		assert.ErrorIs(suite.T(), suite.updateStatus(suite.bob, share, status), apperrors.ErrInvalidTransition)
		assert.ErrorIs(suite.T(), suite.updateStatus(suite.alice, share, status), apperrors.ErrInvalidTransition)
	}
}

func (suite *SharingServiceTestSuite) TestRecipientMaySettle() {
	share := suite.share(suite.alice, suite.lunch, suite.bob, "50")
	require.NoError(suite.T(), suite.updateStatus(suite.bob, share, models.ShareStatusAccepted))
	assert.NoError(suite.T(), suite.updateStatus(suite.bob, share, models.ShareStatusSettled))
}

func (suite *SharingServiceTestSuite) TestStatusIsCaseInsensitive() {
	share := suite.share(suite.alice, suite.lunch, suite.bob, "50")

	view, err := suite.sharing.UpdateStatus(suite.ctx, suite.bob.ID, share.ID, "accepted")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ShareStatusAccepted, view.Status)

	_, err = suite.sharing.UpdateStatus(suite.ctx, suite.bob.ID, share.ID, "paid")
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *SharingServiceTestSuite) TestThirdPartySeesNotFound() {
	share := suite.share(suite.alice, suite.lunch, suite.bob, "50")

	_, err := suite.sharing.Get(suite.ctx, suite.carol.ID, share.ID)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	_, missing := suite.sharing.Get(suite.ctx, suite.carol.ID, share.ID+100)
	assert.Equal(suite.T(), err.Error(), missing.Error())

	assert.ErrorIs(suite.T(), suite.updateStatus(suite.carol, share, models.ShareStatusAccepted), apperrors.ErrNotFound)

	_, err = suite.sharing.UpdateSplit(suite.ctx, suite.carol.ID, share.ID, decimal.RequireFromString("10"))
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	list, err := suite.sharing.List(suite.ctx, suite.carol.ID, repository.Page{})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), list)

	for _, user := range []*models.User{suite.alice, suite.bob} {
		view, err := suite.sharing.Get(suite.ctx, user.ID, share.ID)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), share.ID, view.ID)
	}
}

func (suite *SharingServiceTestSuite) TestCannotShareWithSelf() {
	_, err := suite.sharing.Create(suite.ctx, suite.alice.ID, suite.lunch.ID, ShareInput{
		SharedWithUserID: suite.alice.ID,
		SplitPercentage:  decimal.RequireFromString("50"),
	})
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidRecipient)
}

func (suite *SharingServiceTestSuite) TestUnknownRecipient() {
	_, err := suite.sharing.Create(suite.ctx, suite.alice.ID, suite.lunch.ID, ShareInput{
		SharedWithUserID: 9999,
		SplitPercentage:  decimal.RequireFromString("50"),
	})
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidRecipient)
}

func (suite *SharingServiceTestSuite) TestOnlyOwnerCanShare() {
	_, err := suite.sharing.Create(suite.ctx, suite.bob.ID, suite.lunch.ID, ShareInput{
		SharedWithUserID: suite.carol.ID,
		SplitPercentage:  decimal.RequireFromString("50"),
	})
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *SharingServiceTestSuite) TestSplitValidation() {
	for _, split := range []string{"-0.01", "100.01", "33.333"} {
		_, err := suite.sharing.Create(suite.ctx, suite.alice.ID, suite.lunch.ID, ShareInput{
			SharedWithUserID: suite.bob.ID,
			SplitPercentage:  decimal.RequireFromString(split),
		})
		assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidSplit, "split %s", split)
	}

	for _, split := range []string{"0", "100"} {
		view := suite.share(suite.alice, suite.lunch, suite.bob, split)
		require.NoError(suite.T(), suite.updateStatus(suite.bob, view, models.ShareStatusRejected))
	}
}

func (suite *SharingServiceTestSuite) TestSplitTotalCapped() {
	suite.share(suite.alice, suite.lunch, suite.bob, "60")

	_, err := suite.sharing.Create(suite.ctx, suite.alice.ID, suite.lunch.ID, ShareInput{
		SharedWithUserID: suite.carol.ID,
		SplitPercentage:  decimal.RequireFromString("40.01"),
	})
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidSplit)

	suite.share(suite.alice, suite.lunch, suite.carol, "40")
}

func (suite *SharingServiceTestSuite) TestRejectedSharesFreeTheirSplit() {
	first := suite.share(suite.alice, suite.lunch, suite.bob, "80")
	require.NoError(suite.T(), suite.updateStatus(suite.bob, first, models.ShareStatusRejected))

	suite.share(suite.alice, suite.lunch, suite.carol, "80")
	// The recipient of a rejected share may be asked again.
	_, err := suite.sharing.Create(suite.ctx, suite.alice.ID, suite.lunch.ID, ShareInput{
		SharedWithUserID: suite.bob.ID,
		SplitPercentage:  decimal.RequireFromString("20"),
	})
	assert.NoError(suite.T(), err)
}

func (suite *SharingServiceTestSuite) TestNoDuplicateOpenShare() {
	suite.share(suite.alice, suite.lunch, suite.bob, "10")

	_, err := suite.sharing.Create(suite.ctx, suite.alice.ID, suite.lunch.ID, ShareInput{
		SharedWithUserID: suite.bob.ID,
		SplitPercentage:  decimal.RequireFromString("10"),
	})
	assert.ErrorIs(suite.T(), err, apperrors.ErrDuplicate)
}

func (suite *SharingServiceTestSuite) TestUpdateSplit() {
	share := suite.share(suite.alice, suite.lunch, suite.bob, "30")
	suite.share(suite.alice, suite.lunch, suite.carol, "50")

	_, err := suite.sharing.UpdateSplit(suite.ctx, suite.bob.ID, share.ID, decimal.RequireFromString("20"))
	assert.ErrorIs(suite.T(), err, apperrors.ErrForbidden)

	_, err = suite.sharing.UpdateSplit(suite.ctx, suite.alice.ID, share.ID, decimal.RequireFromString("50.01"))
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidSplit)

	updated, err := suite.sharing.UpdateSplit(suite.ctx, suite.alice.ID, share.ID, decimal.RequireFromString("50"))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "50.00", updated.SplitPercentage.StringFixed(2))
	assert.Equal(suite.T(), events.TypeShareSplitChanged, suite.published.last().Type)

	require.NoError(suite.T(), suite.updateStatus(suite.bob, share, models.ShareStatusAccepted))
	_, err = suite.sharing.UpdateSplit(suite.ctx, suite.alice.ID, share.ID, decimal.RequireFromString("10"))
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidTransition)
}

func (suite *SharingServiceTestSuite) TestListIsStableAndScoped() {
	first := suite.share(suite.alice, suite.lunch, suite.bob, "10")
	second := suite.share(suite.alice, suite.lunch, suite.carol, "10")

	owner, err := suite.sharing.List(suite.ctx, suite.alice.ID, repository.Page{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), owner, 2)
	assert.Equal(suite.T(), first.ID, owner[0].ID)
	assert.Equal(suite.T(), second.ID, owner[1].ID)

	again, err := suite.sharing.List(suite.ctx, suite.alice.ID, repository.Page{})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), owner, again)

	recipient, err := suite.sharing.List(suite.ctx, suite.bob.ID, repository.Page{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), recipient, 1)
	assert.Equal(suite.T(), first.ID, recipient[0].ID)
}

func TestSharingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SharingServiceTestSuite))
}
