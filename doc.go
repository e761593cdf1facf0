// Package besogo is a ground-structure topology optimizer for 2D frame
// structures: an iterative, physics-coupled loop that starts from a dense
// mesh of candidate members, ranks them by a strain-energy proxy from a
// linear-elastic solve, and soft-kills the least efficient ones under a
// left/right symmetry constraint until the topology converges.
//
// Key Components:
//
//   - core: the shared contracts: the Node/Member arena, the
//     AnalysisEngine capability interface, run states and iteration
//     reports.
//
//   - ground: ground-structure mesh generation and the symmetry pairing
//     over it.
//
//   - section: I-section area and moment-of-inertia derivation.
//
//   - solver: a direct-stiffness 2D frame engine (gonum) implementing
//     core.AnalysisEngine.
//
//   - beso: the evolutionary optimizer itself: energy evaluation,
//     soft-kill pruning and the cancellable iteration driver.
//
//   - render: PNG frame rasterization of iteration snapshots.
//
//   - export: PDF run reports and XLSX member schedules.
//
// The cmd/besocli command drives headless runs, frame dumps, report
// exports and removal-ratio sweeps.
package besogo
