package refdata

// Default returns the built-in reference data. The sets mirror the audit
// team's maintained lists: user-management and authorization tables,
// privileged transaction codes, credential/financial field patterns,
// inventory valuation tables, and the SAP security-audit event catalog.
func Default() *Reference {
	r, err := New(DefaultConfig())
	if err != nil {
		// Built-in data is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return r
}

// DefaultConfig returns the built-in reference data in overridable form.
func DefaultConfig() Config {
	return Config{
		SensitiveTables: map[string]string{
			// User management
			"USR02":      "User password table - contains encrypted password hashes",
			"USR03":      "User authorization data - links users to authorization profiles",
			"USR04":      "User session data - contains login and session information",
			"USR05":      "User parameter table - contains user configuration settings",
			"USR06":      "User master record - contains core user account data",
			"USR10":      "User address data - contains user contact information",
			"USR11":      "User defaults - contains default configuration for users",
			"USR12":      "User authorization values - contains authorization field values",
			"USR21":      "User substitution - contains user substitution settings",
			"USGRP":      "User groups - maps users to security groups",
			"USAUTH":     "User authorizations - contains user authorization data",
			"USRSYSACTT": "User system activity - tracks user actions in the system",

			// Authorization
			"AGR_USERS": "Authorization group users - maps users to authorization groups",
			"AGR_1016":  "Authorization objects - defines authorization object characteristics",
			"AGR_1251":  "Authorization profile parameters - contains profile configuration",
			"AGR_HIER":  "Authorization hierarchy - defines authorization inheritance",
			"USOBT":     "Authorization object texts - contains object descriptions",
			"USOBX":     "Authorization object extensions - contains extended object settings",

			// Configuration
			"TOBJ":  "System objects - core system object definitions",
			"TOBJT": "System object texts - descriptions for system objects",
			"T000":  "Client table - contains client configuration",
			"T001":  "Company code table - contains company code configuration",
			"TSTC":  "Transaction codes - maps transaction codes to programs",
			"TACTZ": "User activity table - tracks user activity timestamps",
			"TACT":  "Activity table - defines system activities",

			// Financial
			"BKPF": "Accounting document header - contains financial document headers",
			"BSEG": "Accounting document segment - contains financial line items",
			"VBAK": "Sales document header - contains sales order headers",
			"VBAP": "Sales document item - contains sales order items",
			"VBRK": "Billing document header - contains invoice headers",
			"VBRP": "Billing document item - contains invoice line items",
			"LFA1": "Vendor master - contains vendor master data",
			"KNA1": "Customer master - contains customer master data",

			// Security
			"RSECTAB":     "Security table - contains security configuration data",
			"RSECACTPRF":  "Security action profile - contains security policy configurations",
			"RSECACTTPRF": "Security action type profile - defines security action types",
		},

		SensitiveTCodes: map[string]string{
			// User management
			"SU01": "User maintenance - create, modify, delete user accounts",
			"SU10": "Mass user maintenance - modify multiple user accounts",
			"SU20": "Authorization maintenance - define authorization objects",
			"SU21": "Authorization field maintenance - define authorization fields",
			"SU22": "Authorization default maintenance - define default values",
			"SU24": "Authorization proposal values - create authorization proposals",
			"SU25": "Authorization upgrade - update authorization data after upgrades",

			// System administration
			"SM01": "Lock management - control system-wide locks",
			"SM02": "System messages - configure system messages",
			"SM12": "Lock entries management - manage and release system locks",
			"SM19": "Security audit configuration - set up security logging",
			"SM30": "Table maintenance - view and edit system tables",
			"SM31": "Table maintenance generator - configure table maintenance",
			"SM49": "Execute external commands - run OS level commands",
			"SM59": "RFC destinations - configure remote connections",
			"SM69": "External commands - define external command settings",
			"SICF": "HTTP services - configure web services and ICF settings",
			"PFCG": "Role maintenance - create, modify, delete roles",
			"RZ10": "Profile maintenance - modify system profiles",
			"RZ11": "Profile parameter maintenance - change system parameters",
			"RZ12": "Transport management - configure transports",

			// Direct access and development
			"SE16":        "Data browser - direct table data access",
			"SE16N":       "Enhanced data browser - direct table access with extended features",
			"SE38":        "ABAP editor - create/modify ABAP programs",
			"SE93":        "Transaction maintenance - create/modify transaction codes",
			"ST01":        "System trace - analyze system performance",
			"ST02":        "Memory utilization - monitor system memory",
			"ST03":        "Workload analysis - performance monitoring",
			"ST05":        "SQL trace - database access monitoring",
			"STAUTHTRACE": "Authorization trace - track authorization checks",

			// Critical configuration
			"STAD": "System log display - view system logs",
			"SPAM": "Support package manager - install support packages",
			"SPRO": "Customizing - IMG configuration access",
			"OB08": "Account group maintenance - configure account groups",
			"OB28": "Document type maintenance - configure document types",
			"OB51": "Document class maintenance - configure document classes",
			"OB52": "Account type maintenance - configure account types",
			"OB58": "Number range maintenance - configure number ranges",

			// Financial
			"FBZP": "Payment program configuration - configure payment processing",
			"FB50": "Post document - create accounting documents",
			"F110": "Payment run - process automatic payments",
			"F-02": "Enter document - create accounting documents",
			"F-22": "Change document - modify financial documents",
			"XK01": "Create vendor - add vendor master record",
			"XK02": "Change vendor - modify vendor master record",
			"XD01": "Create customer - add customer master record",
			"XD02": "Change customer - modify customer master record",
		},

		FieldPatterns: []FieldPatternDef{
			{Pattern: `PASS(WORD)?`, Category: "Password field"},
			{Pattern: `AUTH(ORIZATION)?`, Category: "Authorization field"},
			{Pattern: `ROLE`, Category: "Role assignment field"},
			{Pattern: `PERM(ISSION)?`, Category: "Permission field"},
			{Pattern: `ACCESS`, Category: "Access control field"},
			{Pattern: `KEY(TOKEN|CODE|AUTH|PASS|CRYPT|SEC)`, Category: "Security key field"},
			{Pattern: `CRED(ENTIAL)?`, Category: "Credential field"},
			{Pattern: `AMOUNT`, Category: "Financial amount field"},
			{Pattern: `CURR(ENCY)?`, Category: "Currency field"},
			{Pattern: `BANK`, Category: "Banking information field"},
			{Pattern: `ACCOUNT`, Category: "Account field"},
			{Pattern: `PAYMENT`, Category: "Payment field"},
			{Pattern: `VENDOR`, Category: "Vendor master data field"},
			{Pattern: `CUSTOMER`, Category: "Customer master data field"},
			{Pattern: `EMPLOYEE`, Category: "Employee data field"},
			{Pattern: `CONFIG`, Category: "Configuration field"},
			{Pattern: `SETTING`, Category: "System setting field"},
			{Pattern: `PARAM(ETER)?`, Category: "Parameter field"},
		},

		// Exact field names that must never trigger pattern rules. SPERM and
		// SPERQ are blocking indicators, not permission fields; KEY and QUAN
		// are generic.
		FieldExclusions: []string{"KEY", "SPERM", "SPERQ", "QUAN"},

		InventoryTables: map[string]string{
			"MARA": "Material master data",
			"MARC": "Plant data for material",
			"MBEW": "Material valuation",
			"EBEW": "Sales order stock valuation",
			"QBEW": "Project stock valuation",
			"MCH1": "Batch master",
			"MCHA": "Batch classification data",
			"MSEG": "Document segment: material",
			"MKPF": "Header: material document",
			"KONP": "Conditions (pricing)",
			"KONH": "Condition header data",
		},

		InventoryFields: map[string]string{
			"POTX1": "Potency value",
			"POTX2": "Potency value",
			"POTY1": "Potency value",
			"POTY2": "Potency value",
			"STPRS": "Standard price",
			"PEINH": "Price unit",
			"VPRSV": "Price control",
			"VERPR": "Moving average price",
			"BWTAR": "Valuation type",
			"BWPRS": "Valuation price",
			"LAEPR": "Last price",
			"LABST": "Unrestricted stock",
			"INSMK": "Stock type",
			"ERFMG": "Quantity",
			"KZBWS": "Valuation indicator",
		},

		DebugMessageCodes: map[string]string{
			"CU_M": "Jump to ABAP debugger",
			"CUL":  "Field content changed in debugger",
			"BUZ":  "Variable modification in debugger",
			"CUK":  "C debugging activated",
			"CUN":  "Process stopped from debugger",
			"CUO":  "Explicit DB commit/rollback from debugger",
			"CUP":  "Non-exclusive debugging session started",
			"BU4":  "Dynamic ABAP coding",
		},

		DebugFlags: []string{"D!", "I!", "G!"},

		// Routine gateway/OData traffic. These signatures superficially
		// resemble debug markers in the variable fields but must never be
		// classified as debugging.
		ServiceSignatures: []string{
			"R3TR IWSV",
			"R3TR IWSG",
			"R3TR G4BA",
			"/sap/opu/odata/",
		},

		EventClasses: map[string]string{
			// Critical
			"AU2": "Critical", "AU4": "Critical", "AU6": "Critical",
			"AU7": "Critical", "AU8": "Critical", "AU9": "Critical",
			"AUA": "Critical", "AUB": "Critical", "AUE": "Critical",
			"AUF": "Critical", "AUI": "Critical", "AUJ": "Critical",
			"AUL": "Critical", "AUM": "Critical", "AUX": "Critical",
			"BU1": "Critical", "BU2": "Critical", "BU4": "Critical",
			"CUK": "Critical", "CUL": "Critical", "CUW": "Critical",
			"CUZ": "Critical", "DU9": "Critical",

			// Important
			"AU1": "Important", "AUN": "Important", "AUO": "Important",
			"AUP": "Important", "AUT": "Important", "AUU": "Important",
			"CUI": "Important",

			// Non-Critical
			"AU3": "Non-Critical", "AU5": "Non-Critical", "AUC": "Non-Critical",
			"AUK": "Non-Critical", "AUW": "Non-Critical", "AUY": "Non-Critical",
			"CUX": "Non-Critical",
		},

		EventDescriptions: map[string]string{
			"AU1": "Logon successful",
			"AU2": "Logon failed",
			"AU3": "Transaction started",
			"AU4": "Transaction start failed",
			"AU5": "RFC/CPIC logon successful",
			"AU6": "RFC/CPIC logon failed",
			"AU7": "User created",
			"AU8": "User deleted",
			"AU9": "User locked",
			"AUA": "User unlocked",
			"AUB": "User authorization changed",
			"AUC": "User logoff",
			"AUE": "Audit configuration changed",
			"AUF": "Audit active changed",
			"AUI": "Audit filter created",
			"AUJ": "Audit filter deleted",
			"AUK": "Successful RFC call",
			"AUL": "Failed RFC call",
			"AUM": "RFC authorization failure",
			"AUN": "Authorization assigned to user",
			"AUO": "Authorization removed from user",
			"AUP": "Successful login after previous failure",
			"AUT": "User type changed",
			"AUU": "User master changed",
			"AUW": "Report started",
			"AUX": "Report start failed",
			"AUY": "RFC statistical record",
			"BU1": "Password check failed",
			"BU2": "Password changed",
			"BU4": "Dynamic ABAP coding",
			"CUI": "Application started",
			"CUK": "C debugging activated",
			"CUL": "Field content changed via debugger",
			"CUW": "Program dynamic info requests",
			"CUX": "Screen element changed",
			"CUZ": "Generic table access by RFC",
			"DU9": "Direct table access",
		},

		TableBrowserTCodes: []string{"SE16", "SE16N", "SE16H", "SM30"},

		AuthFailureMarkers: []string{
			"AUTHORIZATION FAILURE",
			"AUTH. CHECK: FAILED",
			"AUTHORIZATION CHECK FAILED",
		},

		AuthSuccessMarkers: []string{
			"AUTH. CHECK: PASSED",
			"AUTHORIZATION CHECK PASSED",
		},

		DisplayMarkers: []string{"DISPLAY", "VIEW", "SHOW", "LIST", "ACTIVITY 03"},
	}
}
