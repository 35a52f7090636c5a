package storage

import sheets "google.golang.org/api/sheets/v4"

// newSpreadsheetTemplate is the fixed layout every user's document starts
// from: the hidden profile sheet plus one sheet per reading kind with a
// bold header row.
func newSpreadsheetTemplate() *sheets.Spreadsheet {
	return &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: "Health Tracker",
		},
		Sheets: []*sheets.Sheet{
			plainSheet("User Profiles"),
			headerSheet("Blood Sugar", []string{"Date", "Time", "Type", "Value (mg/dL)"}),
			headerSheet("Blood Pressure", []string{"Date", "Time", "Systolic", "Diastolic", "Heart Rate"}),
		},
	}
}

func plainSheet(title string) *sheets.Sheet {
	return &sheets.Sheet{
		Properties: &sheets.SheetProperties{Title: title},
	}
}

func headerSheet(title string, headers []string) *sheets.Sheet {
	row := &sheets.RowData{}
	for _, header := range headers {
		header := header
		row.Values = append(row.Values, &sheets.CellData{
			UserEnteredValue:  &sheets.ExtendedValue{StringValue: &header},
			UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
		})
	}
	return &sheets.Sheet{
		Properties: &sheets.SheetProperties{
			Title:          title,
			GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
		},
		Data: []*sheets.GridData{{RowData: []*sheets.RowData{row}}},
	}
}
