package config

const (
	// File errors
	ErrOpenFileFmt  = "Could not open file: %v"
	ErrSaveFileFmt  = "Could not save file: %v"
	ErrFileChanged  = "File changed on disk; save to overwrite or reopen to discard your edits"
	ErrNoPathGiven  = "A path is required"
	ErrPasteImageFm = "Failed to paste image: %v"
	ErrNotImageFmt  = "Not an image file: %s"
	ErrClipboardFmt = "Clipboard error: %v"

	// Preview errors
	ErrPreviewInitFmt   = "Preview initialisation error: %v"
	ErrPreviewRenderFmt = "Preview error: %v"

	// Dialog errors
	ErrURLRequired = "Please enter a URL"

	// Find errors
	MsgNotFound     = "Not found"
	MsgReplacedFmt  = "Replaced %d occurrence(s)"
	MsgSavedFmt     = "Saved: %s"
	MsgOpenedFmt    = "Opened: %s"
	MsgImageSavedFm = "Image saved: %s"
	MsgReloaded     = "Reloaded from disk"
	MsgFileRemoved  = "File was removed from disk"
	MsgSaveChanges  = "Save changes to %s?"

	// Draft errors
	ErrSaveDraftFmt = "Failed to save draft: %v"
)
