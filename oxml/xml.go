package oxml

import (
	"encoding/xml"
	"strings"
)

const wbBaseDir = "xl"

const typeDocUrl = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"

type xmlWorkbook struct {
	XMLName xml.Name      `xml:"workbook"`
	Views   []xmlBookView `xml:"bookViews>workbookView"`
	Sheets  []xmlSheet    `xml:"sheets>sheet"`
}

type xmlBookView struct {
	ActiveTab int `xml:"activeTab,attr"`
}

type xmlSheet struct {
	XMLName xml.Name `xml:"sheet"`
	Id      string   `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	Name    string   `xml:"name,attr"`
	Index   int      `xml:"sheetId,attr"`
	State   string   `xml:"state,attr"`
}

type xmlRelations struct {
	XMLName   xml.Name      `xml:"Relationships"`
	Relations []xmlRelation `xml:"Relationship"`
}

type xmlRelation struct {
	XMLName xml.Name `xml:"Relationship"`
	Target  string   `xml:",attr"`
	Id      string   `xml:",attr"`
	Type    string   `xml:",attr"`
}

type xmlSharedStrings struct {
	XMLName xml.Name          `xml:"sst"`
	Values  []xmlSharedString `xml:"si"`
}

// xmlSharedString is either a plain text or a list of formatted runs.
type xmlSharedString struct {
	Value string   `xml:"t"`
	Runs  []string `xml:"r>t"`
}

func (s xmlSharedString) Text() string {
	if len(s.Runs) == 0 {
		return s.Value
	}
	return s.Value + strings.Join(s.Runs, "")
}

type xmlStyles struct {
	XMLName xml.Name          `xml:"styleSheet"`
	Formats []xmlNumberFormat `xml:"numFmts>numFmt"`
	Cells   []xmlCellFormat   `xml:"cellXfs>xf"`
}

type xmlNumberFormat struct {
	Id   int    `xml:"numFmtId,attr"`
	Code string `xml:"formatCode,attr"`
}

type xmlCellFormat struct {
	NumberFormat int `xml:"numFmtId,attr"`
}

// builtinFormats are the number formats a workbook refers to by id without
// declaring them.
var builtinFormats = map[int]string{
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
}
