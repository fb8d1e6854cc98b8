package converter

// Request asks for one file to be converted to OutputFormat.
type Request struct {
	InputPath    string
	OutputFormat string
}

// Result is the outcome of a single conversion attempt.
type Result struct {
	Success    bool
	OutputPath string
	Message    string
	Err        error
}

func succeeded(output string) Result {
	return Result{Success: true, OutputPath: output, Message: "Converted: " + output}
}

func failed(message string, err error) Result {
	return Result{Message: message, Err: err}
}

// BatchReport summarises a directory conversion.
type BatchReport struct {
	// Converted counts successful conversions.
	Converted int
	// Examined counts the regular files found, including skipped ones.
	Examined int
	// Results holds one entry per attempted conversion, in listing order.
	Results []Result
}
