// Package spreadsheet converts legacy Excel (.xls) workbooks to .xlsx.
//
// Sheets are copied in order under their original names and every cell is
// copied by value. Cells holding plain numbers are written as numbers; all
// other values are written as text. Styles, formulas and merged ranges are
// not preserved.
package spreadsheet
