package config

// Version is reported by the about command.
const Version = "funcalc 0.4.0"

// SettingsFileNames are the recognized settings file names, in lookup order.
var SettingsFileNames = []string{"funcalc.yaml", "funcalc.yml"}

// Defaults used when a settings file leaves a field unset.
const (
	DefaultPrompt    = "> "
	DefaultSurround  = 20
	DefaultLoopLimit = 1000000
	DefaultBase      = 10
	DefaultOpRank    = 400
	MaxCallDepth     = 200
)

// Names of the innate module and the per-interpreter session module.
const (
	MathModuleName    = "Math"
	SessionModuleName = "session"
)

// Control-flow keywords
const (
	KeywordIf        = "if"
	KeywordElse      = "else"
	KeywordFor       = "for"
	KeywordForeach   = "foreach"
	KeywordIn        = "in"
	KeywordWhile     = "while"
	KeywordNamespace = "namespace"
	KeywordBreak     = "break"
	KeywordReturn    = "return"
)

// Session command words
const (
	CmdHelp     = "help"
	CmdHelpMark = "?"
	CmdAbout    = "about"
	CmdQuit     = "quit"
	CmdPrint    = "print"
	CmdRadians  = "radians"
	CmdDegrees  = "degrees"
	CmdImport   = "import"
	CmdUsing    = "using"
	CmdVar      = "var"
	CmdFunction = "function"
	CmdOperator = "operator"
	CmdUnset    = "unset"
	CmdShow     = "show"
)

// Reserved value words
const (
	TrueName   = "true"
	FalseName  = "false"
	TypeOfName = "typeof"
	StringName = "string"
)
