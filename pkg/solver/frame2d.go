// Package solver provides a linear-elastic 2D frame analysis engine
// (direct stiffness method) implementing core.AnalysisEngine.
package solver

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/StructKit/beso-go/pkg/core"
	"github.com/StructKit/beso-go/pkg/errors"
	"github.com/StructKit/beso-go/pkg/logging"
)

const dofPerNode = 3 // ux, uy, rz

// memberModel is the engine-side representation of one member: geometry is
// frozen at load time, stiffness may be attenuated between solves.
type memberModel struct {
	id     int
	ni, nj int
	ea, ei float64
	length float64
	c, s   float64 // direction cosines
}

// Frame2D is a direct-stiffness frame engine. It keeps a parallel copy of
// the topology's stiffness values so soft-killed members stay part of the
// system matrix.
type Frame2D struct {
	stations int

	nodes       []core.Point
	members     []memberModel
	memberIndex map[int]int // member ID -> index into members
	constrained []bool      // per global DOF
	loads       []float64   // per global DOF

	logger *logging.Logger
}

// Option configures a Frame2D engine.
type Option func(*Frame2D)

// WithStations sets the number of sampling points along each member for
// force diagrams. Minimum 2 (both ends).
func WithStations(n int) Option {
	return func(f *Frame2D) {
		if n >= 2 {
			f.stations = n
		}
	}
}

// New creates a frame engine with default settings (11 stations).
func New(opts ...Option) *Frame2D {
	f := &Frame2D{
		stations: 11,
		logger:   logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// LoadTopology replaces the engine's model with the given topology.
func (f *Frame2D) LoadTopology(t core.Topology) error {
	if len(t.Nodes) == 0 {
		return errors.New(errors.InvalidInput, "topology has no nodes")
	}
	if len(t.Members) == 0 {
		return errors.New(errors.InvalidInput, "topology has no members")
	}
	if len(t.Supports) == 0 {
		return errors.New(errors.InvalidInput, "topology has no supports")
	}

	nodes := append([]core.Point(nil), t.Nodes...)
	members := make([]memberModel, 0, len(t.Members))
	memberIndex := make(map[int]int, len(t.Members))

	for _, spec := range t.Members {
		if spec.NodeI < 0 || spec.NodeI >= len(nodes) || spec.NodeJ < 0 || spec.NodeJ >= len(nodes) {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "member references unknown node"),
				errors.Fields{"member": spec.ID},
			)
		}
		if spec.EA <= 0 || spec.EI <= 0 {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "member stiffness must be positive"),
				errors.Fields{"member": spec.ID, "ea": spec.EA, "ei": spec.EI},
			)
		}
		if _, dup := memberIndex[spec.ID]; dup {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "duplicate member ID"),
				errors.Fields{"member": spec.ID},
			)
		}

		p1, p2 := nodes[spec.NodeI], nodes[spec.NodeJ]
		length := p1.Hypot(p2)
		if length <= 0 {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "member has zero length"),
				errors.Fields{"member": spec.ID},
			)
		}

		memberIndex[spec.ID] = len(members)
		members = append(members, memberModel{
			id:     spec.ID,
			ni:     spec.NodeI,
			nj:     spec.NodeJ,
			ea:     spec.EA,
			ei:     spec.EI,
			length: length,
			c:      (p2.X - p1.X) / length,
			s:      (p2.Y - p1.Y) / length,
		})
	}

	constrained := make([]bool, len(nodes)*dofPerNode)
	restrainedX, restrainedY := false, false
	for _, sup := range t.Supports {
		if sup.Node < 0 || sup.Node >= len(nodes) {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "support references unknown node"),
				errors.Fields{"node": sup.Node},
			)
		}
		base := sup.Node * dofPerNode
		switch sup.Kind {
		case core.Fixed:
			constrained[base], constrained[base+1], constrained[base+2] = true, true, true
			restrainedX, restrainedY = true, true
		case core.Pinned:
			constrained[base], constrained[base+1] = true, true
			restrainedX, restrainedY = true, true
		case core.Roller:
			constrained[base+1] = true
			restrainedY = true
		default:
			return errors.WithFields(
				errors.New(errors.InvalidInput, "unknown support kind"),
				errors.Fields{"node": sup.Node, "kind": int(sup.Kind)},
			)
		}
	}
	if !restrainedX || !restrainedY {
		return errors.New(errors.InvalidInput, "structure is not restrained in both directions")
	}

	loads := make([]float64, len(nodes)*dofPerNode)
	for _, load := range t.Loads {
		if load.Node < 0 || load.Node >= len(nodes) {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "load references unknown node"),
				errors.Fields{"node": load.Node},
			)
		}
		loads[load.Node*dofPerNode] += load.FX
		loads[load.Node*dofPerNode+1] += load.FY
	}

	f.nodes = nodes
	f.members = members
	f.memberIndex = memberIndex
	f.constrained = constrained
	f.loads = loads

	return nil
}

// ScaleMemberStiffness multiplies the stored EA and EI of one member.
func (f *Frame2D) ScaleMemberStiffness(id int, factor float64) error {
	idx, ok := f.memberIndex[id]
	if !ok {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "unknown member ID"),
			errors.Fields{"member": id},
		)
	}
	if factor <= 0 {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "stiffness factor must be positive"),
			errors.Fields{"member": id, "factor": factor},
		)
	}

	f.members[idx].ea *= factor
	f.members[idx].ei *= factor
	return nil
}

// Solve runs a static analysis of the current model. Cancellation is
// honored before assembly, never mid-solve.
func (f *Frame2D) Solve(ctx context.Context) (*core.Solution, error) {
	if err := errors.CheckContext(ctx, "solve"); err != nil {
		return nil, err
	}
	if len(f.nodes) == 0 {
		return nil, errors.New(errors.InvalidRunState, "no topology loaded")
	}

	nDOF := len(f.nodes) * dofPerNode

	// Map free DOFs into the reduced system.
	freeIdx := make([]int, nDOF)
	nFree := 0
	for d := 0; d < nDOF; d++ {
		if f.constrained[d] {
			freeIdx[d] = -1
			continue
		}
		freeIdx[d] = nFree
		nFree++
	}
	if nFree == 0 {
		return nil, errors.New(errors.InvalidInput, "all degrees of freedom are constrained")
	}

	f.logger.Debug(ctx, "assembling reduced system: %d nodes, %d members, %d free DOFs",
		len(f.nodes), len(f.members), nFree)

	K := mat.NewSymDense(nFree, nil)
	fvec := mat.NewVecDense(nFree, nil)

	for i := range f.members {
		m := &f.members[i]
		kg := m.globalStiffness()
		dofs := m.dofs()

		for p := 0; p < 6; p++ {
			r := freeIdx[dofs[p]]
			if r < 0 {
				continue
			}
			for q := 0; q < 6; q++ {
				c := freeIdx[dofs[q]]
				if c < 0 || r > c {
					continue
				}
				K.SetSym(r, c, K.At(r, c)+kg[p][q])
			}
		}
	}

	for d := 0; d < nDOF; d++ {
		if r := freeIdx[d]; r >= 0 {
			fvec.SetVec(r, f.loads[d])
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(K); !ok {
		return nil, errors.WithFields(
			errors.New(errors.SolverInstability, "stiffness matrix is not positive definite"),
			errors.Fields{"free_dofs": nFree},
		)
	}

	var u mat.VecDense
	if err := chol.SolveVecTo(&u, fvec); err != nil {
		return nil, errors.Wrap(err, errors.SolverInstability, "failed to solve equilibrium system")
	}

	// Expand to the full DOF vector (constrained DOFs are zero).
	uFull := make([]float64, nDOF)
	for d := 0; d < nDOF; d++ {
		if r := freeIdx[d]; r >= 0 {
			v := u.AtVec(r)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.New(errors.SolverInstability, "solution contains non-finite displacements")
			}
			uFull[d] = v
		}
	}

	sol := &core.Solution{
		Displacements: make([][3]float64, len(f.nodes)),
		Reactions:     make([][3]float64, len(f.nodes)),
		Forces:        make(map[int]core.MemberForce, len(f.members)),
	}
	for n := range f.nodes {
		base := n * dofPerNode
		sol.Displacements[n] = [3]float64{uFull[base], uFull[base+1], uFull[base+2]}
	}

	// Nodal internal forces, accumulated for reaction recovery.
	fi := make([]float64, nDOF)

	for i := range f.members {
		m := &f.members[i]
		dofs := m.dofs()

		var ue [6]float64
		for p := 0; p < 6; p++ {
			ue[p] = uFull[dofs[p]]
		}

		kg := m.globalStiffness()
		for p := 0; p < 6; p++ {
			for q := 0; q < 6; q++ {
				fi[dofs[p]] += kg[p][q] * ue[q]
			}
		}

		sol.Forces[m.id] = m.forceDiagrams(ue, f.stations)
	}

	for n := range f.nodes {
		base := n * dofPerNode
		for d := 0; d < dofPerNode; d++ {
			if f.constrained[base+d] {
				sol.Reactions[n][d] = fi[base+d] - f.loads[base+d]
			}
		}
	}

	return sol, nil
}

// dofs returns the six global DOF indices of the member.
func (m *memberModel) dofs() [6]int {
	return [6]int{
		m.ni * dofPerNode, m.ni*dofPerNode + 1, m.ni*dofPerNode + 2,
		m.nj * dofPerNode, m.nj*dofPerNode + 1, m.nj*dofPerNode + 2,
	}
}

// localStiffness returns the 6x6 Euler-Bernoulli frame element stiffness in
// local coordinates (u1, v1, rz1, u2, v2, rz2).
func (m *memberModel) localStiffness() [6][6]float64 {
	l := m.length
	ll := l * l
	lll := ll * l

	var k [6][6]float64

	k[0][0] = m.ea / l
	k[0][3] = -m.ea / l
	k[3][0] = -m.ea / l
	k[3][3] = m.ea / l

	k[1][1] = 12 * m.ei / lll
	k[1][2] = 6 * m.ei / ll
	k[1][4] = -12 * m.ei / lll
	k[1][5] = 6 * m.ei / ll

	k[2][1] = 6 * m.ei / ll
	k[2][2] = 4 * m.ei / l
	k[2][4] = -6 * m.ei / ll
	k[2][5] = 2 * m.ei / l

	k[4][1] = -12 * m.ei / lll
	k[4][2] = -6 * m.ei / ll
	k[4][4] = 12 * m.ei / lll
	k[4][5] = -6 * m.ei / ll

	k[5][1] = 6 * m.ei / ll
	k[5][2] = 2 * m.ei / l
	k[5][4] = -6 * m.ei / ll
	k[5][5] = 4 * m.ei / l

	return k
}

// transform maps a global displacement vector into member-local axes.
func (m *memberModel) transform(ug [6]float64) [6]float64 {
	c, s := m.c, m.s
	return [6]float64{
		c*ug[0] + s*ug[1],
		-s*ug[0] + c*ug[1],
		ug[2],
		c*ug[3] + s*ug[4],
		-s*ug[3] + c*ug[4],
		ug[5],
	}
}

// globalStiffness returns T' * kl * T for the member.
func (m *memberModel) globalStiffness() [6][6]float64 {
	kl := m.localStiffness()
	c, s := m.c, m.s

	// Column transform: tmp = kl * T
	var tmp [6][6]float64
	for p := 0; p < 6; p++ {
		for blk := 0; blk < 6; blk += 3 {
			tmp[p][blk] = kl[p][blk]*c - kl[p][blk+1]*s
			tmp[p][blk+1] = kl[p][blk]*s + kl[p][blk+1]*c
			tmp[p][blk+2] = kl[p][blk+2]
		}
	}

	// Row transform: kg = T' * tmp
	var kg [6][6]float64
	for q := 0; q < 6; q++ {
		for blk := 0; blk < 6; blk += 3 {
			kg[blk][q] = tmp[blk][q]*c - tmp[blk+1][q]*s
			kg[blk+1][q] = tmp[blk][q]*s + tmp[blk+1][q]*c
			kg[blk+2][q] = tmp[blk+2][q]
		}
	}

	return kg
}

// forceDiagrams recovers the member's internal force diagrams from its
// global end displacements, sampled at the given number of stations.
func (m *memberModel) forceDiagrams(ug [6]float64, stations int) core.MemberForce {
	ua := m.transform(ug)
	l := m.length
	ll := l * l
	lll := ll * l

	// Constant along the member for a nodally loaded frame element.
	axial := m.ea / l * (ua[3] - ua[0])
	shear := m.ei * (12/lll*ua[1] + 6/ll*ua[2] - 12/lll*ua[4] + 6/ll*ua[5])

	force := core.MemberForce{
		Axial:  make([]float64, stations),
		Shear:  make([]float64, stations),
		Moment: make([]float64, stations),
	}

	for k := 0; k < stations; k++ {
		x := l * float64(k) / float64(stations-1)
		force.Axial[k] = axial
		force.Shear[k] = shear

		// Bending moment from the Hermite shape-function curvature.
		force.Moment[k] = m.ei * ((12*x/lll-6/ll)*ua[1] +
			(6*x/ll-4/l)*ua[2] +
			(6/ll-12*x/lll)*ua[4] +
			(6*x/ll-2/l)*ua[5])
	}

	return force
}
