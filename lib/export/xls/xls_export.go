package xlsexport

import (
	dbmodels "amia-backend/models/db"
	"bytes"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Event requests"

type Provider interface {
	ExportEventRequests(list []dbmodels.EventRequestWithApprovals) (*bytes.Buffer, error)
}

func NewHandler() Provider {
	return impl{}
}

type impl struct{}

var eventRequestHeaders = []string{"Title", "Start", "End", "Importance", "Status", "Approval status", "Requested approvals", "Completed approvals", "Created at"}

func (i impl) ExportEventRequests(list []dbmodels.EventRequestWithApprovals) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("ошибка закрытия файла")
		}
	}()
	sheet := "Sheet1"
	row, err := writeHeader(f, sheet, 0, eventRequestHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	if len(list) != 0 {
		_, err = writeEventRequestData(f, sheet, list, row)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	if err = f.SetSheetName(sheet, SheetName); err != nil {
		return nil, errors.Wrap(err, "ошибка переименования листа в xlsx")
	}
	return f.WriteToBuffer()
}

func writeEventRequestData(f *excelize.File, sheet string, list []dbmodels.EventRequestWithApprovals, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(eventRequestHeaders), row+len(list)); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		var title interface{}
		if item.Title != nil {
			title = *item.Title
		}
		err := writeRow(f, sheet, row,
			title,
			item.StartDate.String(),
			item.EndDate.String(),
			item.ImportanceLevel,
			string(item.Status),
			string(item.ApprovalStatus()),
			item.RequestedApprovals,
			item.CompletedCount,
			item.CreatedAt.Format("02.01.2006 15:04"),
		)
		if err != nil {
			return row, err
		}
	}
	return row, nil
}
