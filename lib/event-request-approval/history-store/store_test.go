package approvalhistorystore

import (
	"amia-backend/db"
	"amia-backend/models"
	dbmodels "amia-backend/models/db"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreate(t *testing.T) {
	DB, err := db.ConnectInMemory()
	require.Nil(t, err)

	t.Run(`ошибка вставки не прерывает внешнюю транзакцию`, func(t *testing.T) {
		err := DB.Transaction(func(tx *gorm.DB) error {
			store := NewInstance(tx)
			firstID, err := store.Create(dbmodels.ApprovalHistory{
				EventRequestID: "request-1",
				UserID:         "approver-1",
				State:          models.AStatePending,
			})
			require.Nil(t, err)

			duplicate := dbmodels.ApprovalHistory{
				BaseModel:      dbmodels.BaseModel{ID: firstID},
				EventRequestID: "request-1",
				UserID:         "approver-2",
				State:          models.AStatePending,
			}
			_, err = store.Create(duplicate)
			require.NotNil(t, err)

			_, err = store.Create(dbmodels.ApprovalHistory{
				EventRequestID: "request-1",
				UserID:         "approver-1",
				State:          models.AStateApproved,
			})
			return err
		})
		require.Nil(t, err)

		list, err := NewInstance(DB).List("request-1")
		require.Nil(t, err)
		require.Len(t, list, 2)
		require.ElementsMatch(t,
			[]models.ApprovalState{models.AStatePending, models.AStateApproved},
			[]models.ApprovalState{list[0].State, list[1].State})
	})
}
