/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

// Record is the metadata of a stored credential: its name and the fields of interest for lookups.
type Record struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Context   []string `json:"context,omitempty"`
	Type      []string `json:"type,omitempty"`
	SubjectID string   `json:"subjectId,omitempty"`
	Issuer    string   `json:"issuer,omitempty"`
}

// GetID returns the credential id.
func (r Record) GetID() string {
	return r.ID
}

// HasType reports whether the credential is of type t.
func (r Record) HasType(t string) bool {
	for _, v := range r.Type {
		if v == t {
			return true
		}
	}

	return false
}

