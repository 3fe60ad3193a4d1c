// Package artifact writes the generated module registry. A Writer replaces
// the whole artifact on every run; there is no merge with a previous file.
// Encoders render the record list as a PHP array (the format the host
// framework loads) or as HCL.
package artifact
