package ontology

import (
	"reflect"
	"strings"
	"testing"
)

func Test_Matcher_EmptyTextYieldsNoHints(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		if hints := RetrieveHints(text, 4); len(hints) != 0 {
			t.Errorf("RetrieveHints(%q) = %d hints, want 0", text, len(hints))
		}
	}
}

func Test_Matcher_ExactAliasScoresFixedConfidence(t *testing.T) {
	t.Parallel()

	hints := RetrieveHints("We migrated everything to Terraform last year.", 4)

	var found *TechHint
	for i := range hints {
		if hints[i].CanonicalName == "Terraform" {
			found = &hints[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("Terraform not matched, got %+v", hints)
	}
	if found.Confidence != 0.92 {
		t.Errorf("exact alias confidence = %v, want exactly 0.92", found.Confidence)
	}
	if found.DomainBlock != "automation_iac" {
		t.Errorf("domain_block = %q, want automation_iac", found.DomainBlock)
	}
	if found.EvidenceSnippet != "terraform" {
		t.Errorf("evidence_snippet = %q, want the matched phrase", found.EvidenceSnippet)
	}
}

func Test_Matcher_NoHintBelowThreshold(t *testing.T) {
	t.Parallel()

	text := "active directory vmware backup terraform powershell azure teams sharepoint " +
		"some unrelated prose about quarterly revenue and travel expenses"
	for _, hint := range RetrieveHints(text, 10) {
		if hint.Confidence < 0.78 {
			t.Errorf("hint %q has confidence %v below threshold", hint.CanonicalName, hint.Confidence)
		}
		if hint.Confidence > 1 {
			t.Errorf("hint %q has confidence %v above 1", hint.CanonicalName, hint.Confidence)
		}
	}
}

func Test_Matcher_ResultsSortedDescending(t *testing.T) {
	t.Parallel()

	hints := RetrieveHints("terraform powershell vmware intune sharepoint active directory", 4)
	for i := 1; i < len(hints); i++ {
		if hints[i].Confidence > hints[i-1].Confidence {
			t.Fatalf("results not descending at index %d: %v then %v",
				i, hints[i-1].Confidence, hints[i].Confidence)
		}
	}
}

func Test_Matcher_OneHitPerCanonicalName(t *testing.T) {
	t.Parallel()

	// "vsphere" and "esxi" both alias the same two entries; each canonical
	// name may appear only once.
	hints := RetrieveHints("vsphere esxi vsphere esxi vcenter", 10)
	seen := make(map[string]bool)
	for _, hint := range hints {
		key := strings.ToLower(hint.CanonicalName)
		if seen[key] {
			t.Errorf("canonical name %q appears more than once", hint.CanonicalName)
		}
		seen[key] = true
	}
}

func Test_Matcher_PerDomainCap(t *testing.T) {
	t.Parallel()

	// Six identity_workplace entries are evidenced; only maxPerDomain survive.
	text := "exchange online teams sharepoint intune entra id active directory"

	counts := func(hints []TechHint) map[string]int {
		c := make(map[string]int)
		for _, h := range hints {
			c[h.DomainBlock]++
		}
		return c
	}

	if got := counts(RetrieveHints(text, 4))["identity_workplace"]; got > 4 {
		t.Errorf("identity_workplace kept %d hints, cap is 4", got)
	}
	if got := counts(RetrieveHints(text, 2))["identity_workplace"]; got > 2 {
		t.Errorf("identity_workplace kept %d hints, cap is 2", got)
	}
}

func Test_Matcher_DefaultMaxPerDomain(t *testing.T) {
	t.Parallel()

	text := "exchange online teams sharepoint intune entra id active directory"
	a := RetrieveHints(text, 0)
	b := RetrieveHints(text, 4)
	if !reflect.DeepEqual(a, b) {
		t.Error("maxPerDomain <= 0 does not fall back to the default of 4")
	}
}

func Test_Matcher_SubtechOfCarriedThrough(t *testing.T) {
	t.Parallel()

	hints := RetrieveHints("we use microsoft teams daily", 4)
	for _, hint := range hints {
		if hint.CanonicalName == "Teams" {
			if hint.SubtechOf != "Microsoft 365" {
				t.Errorf("Teams subtech_of = %q, want Microsoft 365", hint.SubtechOf)
			}
			return
		}
	}
	t.Fatalf("Teams not matched: %+v", hints)
}

func Test_Matcher_EvidenceSnippetCapped(t *testing.T) {
	t.Parallel()

	for _, hint := range RetrieveHints("sharepoint online migration and intune rollout", 4) {
		if len([]rune(hint.EvidenceSnippet)) > 80 {
			t.Errorf("snippet longer than 80 characters: %q", hint.EvidenceSnippet)
		}
	}
}

func Test_Matcher_Deterministic(t *testing.T) {
	t.Parallel()

	text := "terraform bicep arm template powershell azure vm vnet subnet backup " +
		"active directory exchange online sharepoint"
	first := RetrieveHints(text, 4)
	for range 5 {
		if got := RetrieveHints(text, 4); !reflect.DeepEqual(got, first) {
			t.Fatalf("matcher output differs between identical calls:\n%+v\n%+v", got, first)
		}
	}
}

func Test_Matcher_CandidateCapBoundsLongInput(t *testing.T) {
	t.Parallel()

	// 500 distinct tokens produce far more than 220 candidate n-grams; the
	// cap must bound the scan without error.
	var b strings.Builder
	for i := range 500 {
		b.WriteString("word")
		b.WriteRune(rune('a' + i%26))
		b.WriteString(" ")
	}
	m := NewMatcher(Config{})
	if got := m.extractCandidates(b.String()); len(got) > DefaultMaxCandidates {
		t.Errorf("candidate set size %d exceeds cap %d", len(got), DefaultMaxCandidates)
	}
}

func Test_Matcher_CandidateOrderAndDedup(t *testing.T) {
	t.Parallel()

	m := NewMatcher(Config{})
	got := m.extractCandidates("alpha beta alpha")
	want := []string{"alpha", "alpha beta", "alpha beta alpha", "beta", "beta alpha"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func Test_SyntheticEmbedding_Deterministic(t *testing.T) {
	t.Parallel()

	m := NewMatcher(Config{})
	a := m.embed("kubernetes cluster upgrade")
	b := m.embed("kubernetes cluster upgrade")
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical text produced different synthetic vectors")
	}
	if len(a) != DefaultDim {
		t.Errorf("vector length = %d, want %d", len(a), DefaultDim)
	}
	for i, v := range a {
		if v < -1 || v > 1 {
			t.Fatalf("component %d = %v outside [-1,1]", i, v)
		}
	}
}

func Test_SyntheticEmbedding_RepeatsDigestBytes(t *testing.T) {
	t.Parallel()

	// Position i maps digest byte i mod 32, so the vector repeats with
	// period 32.
	m := NewMatcher(Config{})
	v := m.embed("anything")
	for i := 32; i < len(v); i++ {
		if v[i] != v[i-32] {
			t.Fatalf("v[%d] != v[%d]: digest byte cycling broken", i, i-32)
		}
	}
}

func Test_RescaledCosine_DegenerateInputs(t *testing.T) {
	t.Parallel()

	if got := rescaledCosine(nil, nil); got != 0 {
		t.Errorf("cosine(nil, nil) = %v, want 0", got)
	}
	if got := rescaledCosine([]float64{1, 2}, []float64{1}); got != 0 {
		t.Errorf("cosine of mismatched lengths = %v, want 0", got)
	}
	if got := rescaledCosine([]float64{0, 0}, []float64{0, 0}); got != 0 {
		t.Errorf("cosine of zero vectors = %v, want 0", got)
	}
	if got := rescaledCosine([]float64{1, 0}, []float64{1, 0}); got != 1 {
		t.Errorf("cosine of identical vectors = %v, want 1", got)
	}
	if got := rescaledCosine([]float64{1, 0}, []float64{-1, 0}); got != 0 {
		t.Errorf("cosine of opposite vectors = %v, want 0 after rescale", got)
	}
}

func Test_GetEntry_KnownBaseline(t *testing.T) {
	t.Parallel()

	e, ok := GetEntry("active directory")
	if !ok {
		t.Fatal("active directory not found")
	}
	if e.DomainBlock != "identity_workplace" {
		t.Errorf("domain_block = %q, want identity_workplace", e.DomainBlock)
	}
	if !e.IsBaseline {
		t.Error("is_baseline = false, want true")
	}
	if e.IsRoot {
		t.Error("is_root = true, want false")
	}
}

func Test_GetEntry_CaseInsensitive(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Active Directory", "ACTIVE DIRECTORY", "aCtIvE dIrEcToRy"} {
		if _, ok := GetEntry(name); !ok {
			t.Errorf("GetEntry(%q) not found, lookup must be case-insensitive", name)
		}
	}
}

func Test_GetEntry_NotFound(t *testing.T) {
	t.Parallel()

	if _, ok := GetEntry("nonexistent-tech"); ok {
		t.Error("GetEntry returned ok for an unknown name")
	}
}

func Test_GetEntry_SubtechOfIsLookupKey(t *testing.T) {
	t.Parallel()

	child, ok := GetEntry("vcenter")
	if !ok {
		t.Fatal("vcenter not found")
	}
	parent, ok := GetEntry(child.SubtechOf)
	if !ok {
		t.Fatalf("subtech_of %q does not resolve to an entry", child.SubtechOf)
	}
	if parent.CanonicalName != "VMware" {
		t.Errorf("parent = %q, want VMware", parent.CanonicalName)
	}
}
