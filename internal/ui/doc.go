// Package ui renders the console's components.
//
// Each component is a named html/template in templates/ with a typed
// parameter struct in this package (LoginFormParams, DefinitionListParams,
// LabelEditorParams and so on). Templates get the sprig function library.
// Components only display data and validate form input; fetching and
// mutating data is the feature modules' job.
//
// Dialogs post result=close to confirm or result=cancel to dismiss; see
// ParseDialogResult.
package ui
