// Copyright © 2020-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package taxonomy

// Default seed taxids for the host/microbe partition.
var (
	DefaultHostSeeds = []uint32{
		9606,  // human
		10090, // mouse
		10114, // rats
		9989,  // rodents
		9443,  // primates
		33208, // animalia (Metazoa)
		33090, // green plants (Viridiplantae)
	}

	DefaultMicrobeSeeds = []uint32{
		2157,    // archaea
		2,       // bacteria
		10239,   // viruses
		4751,    // fungi
		33682,   // euglenozoa
		33630,   // alveolata
		554915,  // amoebozoa
		207245,  // fornicata
		5719,    // parabasalia
		5752,    // heterolobosea
		12884,   // viroids
		33634,   // stramenopiles
		1031332, // cryptomycota
		1264859, // entomophthoromycota
		6029,    // microsporidia
		451455,  // neocallimastigomycota
	}
)

// DefaultConfig returns seed lists of hosts and microbes.
func DefaultConfig() Config {
	return Config{
		HostSeeds:    append([]uint32(nil), DefaultHostSeeds...),
		MicrobeSeeds: append([]uint32(nil), DefaultMicrobeSeeds...),
	}
}

// Host seeds are labelled after microbe ones and win on overlap. A seed
// labels itself and every taxon in its subtree.
func (t *Tree) setCategories(cfg Config) {
	t.category = make(map[uint32]uint32, len(t.parents))
	t.hostSeeds = append([]uint32(nil), cfg.HostSeeds...)
	t.microbeSeeds = append([]uint32(nil), cfg.MicrobeSeeds...)

	for _, seed := range t.microbeSeeds {
		t.labelSubtree(seed)
	}
	for _, seed := range t.hostSeeds {
		t.labelSubtree(seed)
	}
}

func (t *Tree) labelSubtree(seed uint32) {
	if _, ok := t.parents[seed]; !ok {
		log.Warningf("seed taxid not found in taxonomy: %d", seed)
		return
	}
	queue := []uint32{seed}
	var taxid uint32
	for len(queue) > 0 {
		taxid, queue = queue[0], queue[1:]
		t.category[taxid] = seed
		queue = append(queue, t.children[taxid]...)
	}
}

// Category returns the seed governing a taxid, or Unassigned.
// The boolean is false for taxids absent from the tree.
func (t *Tree) Category(taxid uint32) (uint32, bool) {
	if _, ok := t.parents[taxid]; !ok {
		return Unassigned, false
	}
	if c, ok := t.category[taxid]; ok {
		return c, true
	}
	return Unassigned, true
}

// HostSeeds returns the host seed list.
func (t *Tree) HostSeeds() []uint32 { return t.hostSeeds }

// MicrobeSeeds returns the microbe seed list.
func (t *Tree) MicrobeSeeds() []uint32 { return t.microbeSeeds }
