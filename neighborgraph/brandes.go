package neighborgraph

import (
	"container/heap"
	"math"
)

// tieTolerance decides when two path lengths are the same shortest distance.
// Weights are integers plus EdgeWeightOffset, so sums only differ by rounding.
const tieTolerance = 1e-9

func sameDistance(a, b float64) bool {
	if math.IsInf(a, 1) || math.IsInf(b, 1) {
		return false
	}
	return math.Abs(a-b) <= tieTolerance*math.Max(1, math.Max(a, b))
}

// betweenness returns the weighted vertex and edge betweenness of every vertex
// (indexed by ID) and every edge (indexed as ng.edges). It runs Brandes'
// algorithm from each source, so tied shortest paths are counted rather than
// enumerated. Every unordered pair is visited from both ends, which doubles
// the scores uniformly.
func (ng *NeighbourGraph) betweenness() (vertex, edge []float64) {
	n := len(ng.ids)
	vertex = make([]float64, n)
	edge = make([]float64, len(ng.edges))

	dist := make([]float64, n)
	sigma := make([]float64, n)
	delta := make([]float64, n)
	settled := make([]bool, n)
	preds := make([][]int64, n)
	order := make([]int64, 0, n)

	for s := int64(0); s < int64(n); s++ {
		for i := range dist {
			dist[i] = math.Inf(1)
			sigma[i] = 0
			delta[i] = 0
			settled[i] = false
			preds[i] = preds[i][:0]
		}
		order = order[:0]

		dist[s] = 0
		sigma[s] = 1
		queue := &distanceQueue{{id: s}}

		for queue.Len() > 0 {
			v := heap.Pop(queue).(queued).id
			if settled[v] {
				continue
			}
			settled[v] = true
			order = append(order, v)

			to := ng.g.From(v)
			for to.Next() {
				w := to.Node().ID()
				if settled[w] {
					continue
				}
				alt := dist[v] + ng.g.WeightedEdge(v, w).Weight()
				switch {
				case sameDistance(alt, dist[w]):
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				case alt < dist[w]:
					dist[w] = alt
					sigma[w] = sigma[v]
					preds[w] = append(preds[w][:0], v)
					heap.Push(queue, queued{id: w, dist: alt})
				}
			}
		}

		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range preds[w] {
				c := sigma[v] / sigma[w] * (1 + delta[w])
				edge[ng.edgeIndex[edgeKey(v, w)]] += c
				delta[v] += c
			}
			if w != s {
				vertex[w] += delta[w]
			}
		}
	}

	return vertex, edge
}

type queued struct {
	id   int64
	dist float64
}

// distanceQueue is a min-heap on dist.
type distanceQueue []queued

func (q distanceQueue) Len() int            { return len(q) }
func (q distanceQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q distanceQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *distanceQueue) Push(x interface{}) { *q = append(*q, x.(queued)) }
func (q *distanceQueue) Pop() interface{} {
	old := *q
	x := old[len(old)-1]
	*q = old[:len(old)-1]
	return x
}
