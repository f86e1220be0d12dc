package events

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "admin.activity.trial_extended", Subject(models.ActionTrialExtended))
	assert.Equal(t, "admin.activity.store_deactivated", Subject(models.ActionStoreDeactivated))
}

func TestPublishActivity_NoClientSkips(t *testing.T) {
	p := NewPublisher(nil, logrus.NewEntry(logrus.New()))

	err := p.PublishActivity(context.Background(), &models.AdminActivityLog{Action: models.ActionTrialEnded})
	assert.NoError(t, err)
}
