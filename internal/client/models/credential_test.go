package models

import "testing"

func TestCredentialPatch_Empty(t *testing.T) {
	if !(CredentialPatch{}).Empty() {
		t.Fatal("zero patch must be empty")
	}
	s := ""
	if (CredentialPatch{URL: &s}).Empty() {
		t.Fatal("patch clearing url must not be empty")
	}
}
