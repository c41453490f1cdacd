package solver

import (
	"math/rand"
	"sort"
	"time"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/constraint"
	"github.com/meshachvetz/classalloc/internal/domain"
	"github.com/meshachvetz/classalloc/internal/neighborhood"
	"github.com/meshachvetz/classalloc/internal/obs"
)

// Selection method names recognized by the genetic solver.
const (
	SelectionTournament = "tournament"
	SelectionRoulette   = "roulette"
	SelectionRank       = "rank"
)

// GeneticSolver is the genetic algorithm. min_friends_required is relaxed
// to a soft objective during evolution but still reported in the final
// feasibility check, per the per-solver hard/soft asymmetry.
type GeneticSolver struct {
	Config config.Config
	Seed   int64
	Cancel <-chan struct{}
}

func NewGeneticSolver(cfg config.Config, seed int64) *GeneticSolver {
	return &GeneticSolver{Config: cfg, Seed: seed}
}

func (s *GeneticSolver) Name() string { return "genetic" }

func (s *GeneticSolver) Parameters() map[string]any {
	g := s.Config.Genetic
	return map[string]any{
		"population_size":         g.PopulationSize,
		"elite_size":              g.EliteSize,
		"max_generations":         g.MaxGenerations,
		"crossover_rate":          g.CrossoverRate,
		"mutation_rate":           g.MutationRate,
		"tournament_size":         g.TournamentSize,
		"selection_method":        g.SelectionMethod,
		"convergence_generations": g.ConvergenceGenerations,
		"seed":                    s.Seed,
	}
}

type individual struct {
	school *domain.School
	fitness float64
	age     int
}

func (s *GeneticSolver) Optimize(initial *domain.School, maxIterations int) *OptimizationResult {
	log := obs.NewLogger("genetic", s.Config.LogLevel)
	start := time.Now()
	rng := rand.New(rand.NewSource(s.Seed))

	initialScore := evalScore(initial, s.Config)
	tracker := newBestTracker(initial, initialScore)
	constraintOpts := constraint.Options{CheckClassSize: true, CheckMinFriends: true}
	gate := neighborhood.GateOptions{
		RespectForceConstraints: s.Config.RespectForceConstraints,
		OverrideProbability:     s.Config.GAForceFriendOverrideProbability,
	}

	g := s.Config.Genetic
	populationSize := g.PopulationSize
	if populationSize <= 0 {
		populationSize = 50
	}
	n := len(initial.Students())
	// Performance contract (SPEC_FULL.md): for large instances shrink the
	// population and tighten convergence instead of paying O(population *
	// N) scoring cost at full size.
	convergenceGenerations := g.ConvergenceGenerations
	if convergenceGenerations <= 0 {
		convergenceGenerations = 20
	}
	if n > 100 {
		scaled := n / 4
		if scaled < 20 {
			scaled = 20
		}
		if scaled < populationSize {
			populationSize = scaled
		}
		if convergenceGenerations > 10 {
			convergenceGenerations = 10
		}
	}

	eliteSize := g.EliteSize
	if eliteSize <= 0 {
		eliteSize = 1
	}
	if eliteSize > populationSize {
		eliteSize = populationSize
	}
	maxGenerations := g.MaxGenerations
	if maxGenerations <= 0 {
		maxGenerations = maxIterations
	}
	if maxGenerations > maxIterations {
		maxGenerations = maxIterations
	}

	population := s.seedPopulation(initial, populationSize, gate, rng)

	bestEverFitness := initialScore
	stagnant := 0
	gen := 0
	for gen < maxGenerations && shouldContinue(gen, maxIterations, 0, 0, s.Cancel) {
		for i := range population {
			population[i].fitness = evalScore(population[i].school, s.Config)
		}
		sort.Slice(population, func(i, j int) bool { return population[i].fitness > population[j].fitness })

		tracker.observe(gen, population[0].school, population[0].fitness)

		if population[0].fitness > bestEverFitness+g.MinImprovement {
			bestEverFitness = population[0].fitness
			stagnant = 0
		} else {
			stagnant++
		}
		if stagnant >= convergenceGenerations {
			log.Debugf("converged after %d generations, best=%.4f", gen, bestEverFitness)
			gen++
			break
		}

		elites := make([]individual, eliteSize)
		for i := 0; i < eliteSize; i++ {
			elites[i] = individual{school: population[i].school.Clone(), fitness: population[i].fitness}
		}

		next := make([]individual, 0, populationSize)
		next = append(next, elites...)

		attemptCeiling := 3 * populationSize
		attempts := 0
		for len(next) < populationSize && attempts < attemptCeiling {
			attempts++
			p1 := selectParent(population, g.SelectionMethod, g.TournamentSize, rng)
			p2 := selectParent(population, g.SelectionMethod, g.TournamentSize, rng)
			child := crossover(p1.school, p2.school, g.CrossoverRate, gate, rng)
			mutate(child, g.MutationRate, n, gate, rng)
			next = append(next, individual{school: child})
		}
		for len(next) < populationSize {
			pick := population[rng.Intn(eliteSize)]
			next = append(next, individual{school: pick.school.Clone()})
		}
		for i := range next {
			next[i].age++
		}
		population = next
		gen++
	}

	log.Debugf("genetic finished after %d generations, best=%.4f", gen, tracker.bestScore)
	return finalize(s.Name(), s.Parameters(), initial, initialScore, tracker, start, gen, maxIterations, s.Config, constraintOpts)
}

// seedPopulation builds the initial population: one exact copy of input,
// the rest produced by 1-5 bounded random modifications each, rejecting
// infeasible candidates with a fallback to a copy of the input on
// exhaustion.
func (s *GeneticSolver) seedPopulation(initial *domain.School, size int, gate neighborhood.GateOptions, rng *rand.Rand) []individual {
	pop := make([]individual, 0, size)
	pop = append(pop, individual{school: initial.Clone()})
	for len(pop) < size {
		candidate := initial.Clone()
		mutations := 1 + rng.Intn(5)
		ok := true
		for i := 0; i < mutations; i++ {
			if !applyRandomModification(candidate, gate, rng) {
				ok = false
			}
		}
		if !ok {
			candidate = initial.Clone()
		}
		pop = append(pop, individual{school: candidate})
	}
	return pop
}

func applyRandomModification(school *domain.School, gate neighborhood.GateOptions, rng *rand.Rand) bool {
	students := school.Students()
	classIDs := school.ClassIDs()
	if len(students) == 0 || len(classIDs) < 2 {
		return false
	}
	switch rng.Intn(3) {
	case 0:
		a := students[rng.Intn(len(students))]
		b := students[rng.Intn(len(students))]
		if a.ClassID == b.ClassID {
			return false
		}
		return neighborhood.Swap(school, a.ID, b.ID, gate, rng)
	case 1:
		st := students[rng.Intn(len(students))]
		target := classIDs[rng.Intn(len(classIDs))]
		return neighborhood.Move(school, st.ID, target, gate, rng)
	default:
		group := pickSmallGroup(students, rng)
		target := classIDs[rng.Intn(len(classIDs))]
		return neighborhood.GroupMove(school, group, target, gate, rng)
	}
}

func pickSmallGroup(students []*domain.Student, rng *rand.Rand) []domain.StudentID {
	size := 2 + rng.Intn(4)
	if size > len(students) {
		size = len(students)
	}
	perm := rng.Perm(len(students))
	out := make([]domain.StudentID, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, students[perm[i]].ID)
	}
	return out
}

func selectParent(population []individual, method string, tournamentSize int, rng *rand.Rand) individual {
	switch method {
	case SelectionRoulette:
		return rouletteSelect(population, rng)
	case SelectionRank:
		return rankSelect(population, rng)
	default:
		return tournamentSelect(population, tournamentSize, rng)
	}
}

func tournamentSelect(population []individual, k int, rng *rand.Rand) individual {
	if k <= 0 {
		k = 3
	}
	best := population[rng.Intn(len(population))]
	for i := 1; i < k; i++ {
		cand := population[rng.Intn(len(population))]
		if cand.fitness > best.fitness {
			best = cand
		}
	}
	return best
}

func rouletteSelect(population []individual, rng *rand.Rand) individual {
	total := 0.0
	for _, ind := range population {
		total += ind.fitness
	}
	if total <= 0 {
		return population[rng.Intn(len(population))]
	}
	pick := rng.Float64() * total
	acc := 0.0
	for _, ind := range population {
		acc += ind.fitness
		if acc >= pick {
			return ind
		}
	}
	return population[len(population)-1]
}

func rankSelect(population []individual, rng *rand.Rand) individual {
	// population is kept sorted descending by fitness; rank weight equals
	// ascending-fitness rank index, so the worst individual has weight 1
	// and the best has weight len(population).
	n := len(population)
	total := n * (n + 1) / 2
	pick := rng.Intn(total)
	acc := 0
	for i := n - 1; i >= 0; i-- {
		weight := n - i
		acc += weight
		if acc > pick {
			return population[i]
		}
	}
	return population[0]
}

// crossover performs uniform crossover over students: for each student,
// keep parent1's class with probability 0.5, else adopt parent2's,
// provided the move is feasible under the genetic permissive gate.
func crossover(parent1, parent2 *domain.School, crossoverRate float64, gate neighborhood.GateOptions, rng *rand.Rand) *domain.School {
	child := parent1.Clone()
	if rng.Float64() >= crossoverRate {
		return child
	}
	for _, s := range child.Students() {
		if rng.Float64() >= 0.5 {
			continue
		}
		donor, ok := parent2.GetStudent(s.ID)
		if !ok || donor.ClassID == "" || donor.ClassID == s.ClassID {
			continue
		}
		if _, ok := child.GetClass(donor.ClassID); !ok {
			continue
		}
		neighborhood.Move(child, s.ID, donor.ClassID, gate, rng)
	}
	return child
}

// mutate applies a bounded number of random modifications scaling with
// mutationRate*N, capped at 5.
func mutate(school *domain.School, mutationRate float64, n int, gate neighborhood.GateOptions, rng *rand.Rand) {
	if rng.Float64() >= mutationRate {
		return
	}
	count := int(mutationRate * float64(n))
	if count < 1 {
		count = 1
	}
	if count > 5 {
		count = 5
	}
	for i := 0; i < count; i++ {
		applyRandomModification(school, gate, rng)
	}
}
