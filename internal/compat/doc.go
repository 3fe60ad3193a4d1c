// Package compat checks that the running generator satisfies the version
// constraint the root project places on the installer package.
//
// A mismatch is reported, never enforced: generation always proceeds.
package compat
