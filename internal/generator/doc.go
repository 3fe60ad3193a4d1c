// Package generator wires the catalog, the registry pipeline and the artifact
// writer into one regeneration run for a project.
package generator
