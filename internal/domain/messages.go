package domain

// User-facing status messages.
const (
	MsgEnterQuery   = "Please enter a query."
	MsgProcessing   = "Processing query..."
	MsgQueryFailed  = "Error processing request"
	MsgBusy         = "You have an active query processing. Please wait."
	MsgSelectFile   = "Please select a PDF file."
	MsgUploading    = "Uploading file..."
	MsgUploadFailed = "Error uploading file."
)
