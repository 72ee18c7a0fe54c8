package config

// Application constants
const (
	AppName = "sheetclean"

	// EnvPrefix namespaces every environment variable, e.g. SHEETCLEAN_WORKERS.
	EnvPrefix = "SHEETCLEAN"

	// DefaultConfigFile is read from the working directory when present.
	DefaultConfigFile = "sheetclean.yaml"

	DefaultInputDir  = "."
	DefaultRulesFile = "opravy.json"

	DefaultFillDownColumn = "Serial_Number"

	// Output sheet
	DefaultSheetName  = "Upraveno"
	DefaultTableName  = "DataTable"
	DefaultTableStyle = "TableStyleMedium9"
	MaxSheetNameLen   = 31

	DefaultWorkers = 1
	MaxWorkers     = 64

	DefaultLogFile = "logs/sheetclean.log"
)

// DefaultExtensions are the workbook formats excelize can rewrite in place.
var DefaultExtensions = []string{".xlsx", ".xlsm"}

// DefaultTrimColumns are the producer and location columns whose text cells
// carry stray whitespace in the source reports.
var DefaultTrimColumns = []string{
	"Market_brand",
	"Location",
	"By",
	"NT_VERTICAL_-_Cabinet_Producer",
	"NT_VERTICAL_-_Door_manufacture",
	"NT_ISLAND_-_Cabinet_Producer",
	"LT_VERTICAL_-_Cabinet_Producer",
	"LT_VERTICAL_-_Door_manufacture",
	"LT_COMBI_-_Cabinet_Producer_UPPER",
	"LT_COMBI_-_Door_manufacture_UPPER",
	"LT_COMBI_-_Cabinet_producer_LOWER",
	"LT_COMBI_-_Door_manufacture_LOWER",
	"LT_ISLAND_-_Cabinet_Producer",
	"LT_ISLAND_-_Lids__Producer",
	"COLD_ROOM_-_Cold_Room_Producer",
	"COLD_ROOM_-_Door_manufacture",
}
