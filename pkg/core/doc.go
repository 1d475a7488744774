// Package core defines the shared language of the adpbuild system.
//
// This package contains:
//   - Build inputs (CandidateNode, AllowList, DefineSet, ArtifactSet)
//   - Architecture profiles and resolved targets (ArchProfile, Target)
//   - Configuration types (TargetConfig, DeviceConfig, PackageConfig)
//   - Ledger entities (Run, PackageRecord, ResetRecord) and the Store interface
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
