package domain

// CatalogControl is one control definition in the fixed catalog.
// Assessments instantiate one Safeguard per control and one Criterion
// per evidence requirement.
type CatalogControl struct {
	// ID is the stable external control identifier (e.g. "1.1").
	ID string

	// Name is the control title.
	Name string

	// Description explains what the control requires.
	Description string

	// Criteria are the granular evidence requirements graded
	// independently during a run.
	Criteria []string
}

// Catalog returns the fixed control catalog. The returned slice is a
// copy; callers may modify it freely.
func Catalog() []CatalogControl {
	out := make([]CatalogControl, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogControlByID returns the catalog control with the given id, or
// nil if no such control exists.
func CatalogControlByID(id string) *CatalogControl {
	for i := range catalog {
		if catalog[i].ID == id {
			c := catalog[i]
			return &c
		}
	}
	return nil
}

// catalog is the built-in control catalog. Ordering is the presentation
// order used by reports and the CLI.
var catalog = []CatalogControl{
	{
		ID:          "1.1",
		Name:        "Establish and Maintain an Enterprise Asset Inventory",
		Description: "Maintain an accurate, detailed inventory of all enterprise assets with the potential to store or process data.",
		Criteria: []string{
			"A documented asset inventory exists covering all hardware assets including end-user devices, network devices, and servers",
			"The asset inventory records the owner, network address, and approval status for each asset",
			"The asset inventory is reviewed and updated at least bi-annually",
			"A process exists to address unauthorised assets discovered on the network",
		},
	},
	{
		ID:          "2.1",
		Name:        "Establish and Maintain a Software Inventory",
		Description: "Maintain an inventory of all licensed and authorised software installed on enterprise assets.",
		Criteria: []string{
			"A documented software inventory exists covering all installed software with title, publisher, and install date",
			"The software inventory distinguishes authorised from unauthorised software",
			"Unsupported or end-of-life software is identified and tracked for removal",
		},
	},
	{
		ID:          "3.3",
		Name:        "Configure Data Access Control Lists",
		Description: "Configure data access control lists based on a user's need to know.",
		Criteria: []string{
			"Access to sensitive data is granted on a documented need-to-know basis",
			"Access control lists are applied to local and remote file systems, databases, and applications",
			"Access rights are reviewed on a defined schedule and revoked when no longer required",
		},
	},
	{
		ID:          "3.11",
		Name:        "Encrypt Sensitive Data at Rest",
		Description: "Encrypt sensitive data at rest on servers, applications, and databases containing sensitive data.",
		Criteria: []string{
			"A policy requires encryption of sensitive data at rest",
			"Storage-layer or application-layer encryption is deployed for systems holding sensitive data",
			"Encryption key management responsibilities and rotation procedures are documented",
		},
	},
	{
		ID:          "4.1",
		Name:        "Establish and Maintain a Secure Configuration Process",
		Description: "Establish and maintain a documented secure configuration process for enterprise assets and software.",
		Criteria: []string{
			"Secure configuration baselines exist for operating systems, applications, and network devices",
			"Configuration baselines are reviewed and updated at least annually or when significant changes occur",
			"Deviations from configuration baselines are detected and remediated through a documented process",
		},
	},
	{
		ID:          "5.2",
		Name:        "Use Unique Passwords",
		Description: "Use unique passwords for all enterprise assets, meeting documented complexity requirements.",
		Criteria: []string{
			"A password policy defines minimum length and complexity requirements",
			"Password reuse across enterprise accounts is prohibited and technically enforced",
			"Default vendor passwords are changed before assets are deployed",
		},
	},
	{
		ID:          "6.3",
		Name:        "Require MFA for Externally-Exposed Applications",
		Description: "Require all externally-exposed enterprise or third-party applications to enforce multi-factor authentication.",
		Criteria: []string{
			"Multi-factor authentication is enforced for all externally-exposed applications",
			"Multi-factor authentication is enforced for remote network access",
			"Exceptions to multi-factor authentication requirements are documented and time-bound",
		},
	},
	{
		ID:          "8.2",
		Name:        "Collect Audit Logs",
		Description: "Collect audit logs across enterprise assets in accordance with the audit log management process.",
		Criteria: []string{
			"Audit logging is enabled on all servers, network devices, and security tooling",
			"Audit logs are collected centrally and protected from tampering",
			"Audit log retention meets the documented retention requirement",
			"Audit logs are reviewed on a defined schedule for anomalous activity",
		},
	},
	{
		ID:          "11.1",
		Name:        "Establish and Maintain a Data Recovery Process",
		Description: "Establish and maintain a documented data recovery process covering scope, prioritisation, and data protection.",
		Criteria: []string{
			"A documented backup and recovery process exists covering all in-scope systems",
			"Backups are performed automatically on a defined schedule",
			"Recovery of backed-up data is tested at least quarterly",
			"Backup data is protected with controls equivalent to the source data",
		},
	},
	{
		ID:          "14.1",
		Name:        "Establish and Maintain a Security Awareness Program",
		Description: "Establish and maintain a security awareness program to influence behaviour among the workforce.",
		Criteria: []string{
			"A security awareness program is documented and approved by management",
			"All workforce members complete security awareness training at hire and at least annually",
			"Training completion is tracked and non-completion is escalated",
		},
	},
	{
		ID:          "17.1",
		Name:        "Designate Personnel to Manage Incident Handling",
		Description: "Designate one key person, and at least one backup, to manage the enterprise incident handling process.",
		Criteria: []string{
			"An incident response plan is documented and approved",
			"Incident handling roles, including a primary and backup lead, are assigned",
			"The incident response plan is exercised or reviewed at least annually",
		},
	},
	{
		ID:          "18.2",
		Name:        "Perform Periodic External Penetration Tests",
		Description: "Perform periodic external penetration tests based on program requirements, no less than annually.",
		Criteria: []string{
			"External penetration tests are performed at least annually",
			"Penetration test findings are tracked to remediation",
			"Penetration test scope covers all externally-exposed systems",
		},
	},
}
