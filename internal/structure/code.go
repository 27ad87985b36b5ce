// Package structure generates and verifies the customer/section folder
// hierarchy inside a vault.
//
// Layout produced under the vault root:
//
//	Run/<CODE>/<CODE>-Index.md
//	Run/<CODE>/<CODE>-<SECTION>/<CODE>-<SECTION>-Index.md
//	Run-Hub.md
package structure

import "fmt"

// CodePrefix is prepended to every zero-padded customer ID.
const CodePrefix = "CUST-"

// RunDirName is the top-level directory holding all customer folders.
const RunDirName = "Run"

// FormatCode derives the display code for a customer ID.
//
// The decimal representation of id is zero-padded to width digits. IDs whose
// representation exceeds the width are never truncated; the full number is
// emitted and the code simply comes out wider.
func FormatCode(id, width int) string {
	return fmt.Sprintf("%s%0*d", CodePrefix, width, id)
}

// CustomerDirRel returns the vault-relative customer directory.
func CustomerDirRel(code string) string {
	return RunDirName + "/" + code
}

// RootIndexRel returns the vault-relative root index file for a customer.
func RootIndexRel(code string) string {
	return CustomerDirRel(code) + "/" + code + "-Index.md"
}

// SectionDirRel returns the vault-relative section directory.
func SectionDirRel(code, section string) string {
	return CustomerDirRel(code) + "/" + code + "-" + section
}

// SectionIndexRel returns the vault-relative section index file.
func SectionIndexRel(code, section string) string {
	return SectionDirRel(code, section) + "/" + code + "-" + section + "-Index.md"
}
