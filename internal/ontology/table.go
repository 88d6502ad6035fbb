// Package ontology implements the offline technology matcher: a deterministic
// scorer that infers which entries of a controlled technology ontology are
// evidenced in free-form text, without calling any external embedding model.
// The ontology table is compiled in and immutable for the process lifetime,
// so unsynchronized concurrent reads are safe.
package ontology

import "strings"

// Entry is one row of the controlled technology ontology.
type Entry struct {
	// CanonicalName is the unique primary key of the entry.
	CanonicalName string

	// DomainBlock is the coarse category the entry belongs to
	// (e.g. "core_infra", "identity_workplace").
	DomainBlock string

	// SubtechOf optionally names the parent entry's canonical name. It is a
	// lookup key only, never an ownership edge.
	SubtechOf string

	// Aliases are the lowercase surface forms that evidence this entry.
	Aliases []string

	// IsBaseline marks entries downstream consumers treat as baseline skills.
	IsBaseline bool

	// IsRoot marks top-level entries that anchor a technology family.
	IsRoot bool
}

// entries is the compiled-in ontology table. Order matters: candidate alias
// scanning and tie-breaking follow this order, so rows must not be re-sorted.
var entries = []Entry{
	{CanonicalName: "Windows Server", DomainBlock: "core_infra", Aliases: []string{"windows server", "server 2019", "server 2022"}, IsRoot: true},
	{CanonicalName: "VMware", DomainBlock: "core_infra", Aliases: []string{"vmware", "vsphere", "esxi", "vcenter"}, IsRoot: true},
	{CanonicalName: "Azure (IaaS)", DomainBlock: "cloud_iaas", Aliases: []string{"azure", "azure vm", "virtual machine", "virtual machines"}, IsRoot: true},
	{CanonicalName: "Microsoft 365", DomainBlock: "identity_workplace", Aliases: []string{"microsoft 365", "office 365", "o365", "m365"}, IsRoot: true},
	{CanonicalName: "PowerShell", DomainBlock: "automation_iac", Aliases: []string{"powershell", "pwsh", "script"}, IsRoot: true},
	{CanonicalName: "Terraform", DomainBlock: "automation_iac", Aliases: []string{"terraform", "tfstate", "hcl"}, IsRoot: true},
	{CanonicalName: "Bicep/ARM", DomainBlock: "automation_iac", Aliases: []string{"bicep", "arm template", "arm"}, IsRoot: true},
	{CanonicalName: "Virtual Machines", DomainBlock: "cloud_iaas", SubtechOf: "Azure (IaaS)", Aliases: []string{"virtual machine", "virtual machines", "azure vm", "vms"}},
	{CanonicalName: "Networking", DomainBlock: "cloud_iaas", SubtechOf: "Azure (IaaS)", Aliases: []string{"vnet", "subnet", "nsg", "networking"}},
	{CanonicalName: "Storage", DomainBlock: "cloud_iaas", SubtechOf: "Azure (IaaS)", Aliases: []string{"blob storage", "managed disk", "storage"}},
	{CanonicalName: "Backup / DR", DomainBlock: "cloud_iaas", SubtechOf: "Azure (IaaS)", Aliases: []string{"backup", "disaster recovery", "dr"}},
	{CanonicalName: "Exchange Online", DomainBlock: "identity_workplace", SubtechOf: "Microsoft 365", Aliases: []string{"exchange online", "exchange"}},
	{CanonicalName: "Teams", DomainBlock: "identity_workplace", SubtechOf: "Microsoft 365", Aliases: []string{"teams", "microsoft teams"}},
	{CanonicalName: "SharePoint", DomainBlock: "identity_workplace", SubtechOf: "Microsoft 365", Aliases: []string{"sharepoint", "sharepoint online"}},
	{CanonicalName: "Intune", DomainBlock: "identity_workplace", SubtechOf: "Microsoft 365", Aliases: []string{"intune", "endpoint manager"}},
	{CanonicalName: "Identity (Entra ID)", DomainBlock: "identity_workplace", SubtechOf: "Microsoft 365", Aliases: []string{"entra", "entra id", "azure ad", "identity"}},
	{CanonicalName: "vSphere / ESXi", DomainBlock: "core_infra", SubtechOf: "VMware", Aliases: []string{"vsphere", "esxi"}},
	{CanonicalName: "vCenter", DomainBlock: "core_infra", SubtechOf: "VMware", Aliases: []string{"vcenter"}},
	{CanonicalName: "Clusterbeheer", DomainBlock: "core_infra", SubtechOf: "VMware", Aliases: []string{"cluster", "clusterbeheer"}},
	{CanonicalName: "Backup & recovery", DomainBlock: "core_infra", SubtechOf: "VMware", Aliases: []string{"backup", "recovery"}},
	{CanonicalName: "Active Directory", DomainBlock: "identity_workplace", Aliases: []string{"active directory", "ad ds", "activedirectory"}, IsBaseline: true},
}

// byName indexes the table by lowercased canonical name for lookups.
var byName = func() map[string]*Entry {
	m := make(map[string]*Entry, len(entries))
	for i := range entries {
		m[strings.ToLower(entries[i].CanonicalName)] = &entries[i]
	}
	return m
}()

// GetEntry returns the ontology entry for the given canonical name
// (case-insensitive) and whether it exists. A miss is not an error.
func GetEntry(canonicalName string) (Entry, bool) {
	e, ok := byName[strings.ToLower(canonicalName)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns the full ontology table. The returned slice is shared and
// must be treated as read-only.
func Entries() []Entry {
	return entries
}
