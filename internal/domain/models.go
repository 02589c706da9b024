package domain

// SheetQuery names one sheet of a report and the SQL that produces its rows.
type SheetQuery struct {
	Name string
	SQL  string
	Args []interface{}
}

// SheetData is the fetched contents of a sheet: the column names in select
// order and the scanned rows.
type SheetData struct {
	Headers []string
	Rows    [][]interface{}
}
