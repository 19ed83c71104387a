/*
Package parlr is a push-driven LR parsing toolbox.

parlr strives to be a smart and lightweight tool to generate
table-driven parsers for DSLs, without a code-generation step.
It focusses on canonical LR(1) parsing and on incremental, push-based
operation: clients feed tokens one at a time, at their own pace, and the
parser fires semantic actions as soon as reductions become certain.
Package structure is as follows:

■ lr: Package lr implements the grammar model, grammar analysis, and the
LR(1) parse table generator, together with supporting data structures.

■ lr/push: Package push implements the push-based parser runtime driving
the generated tables.

■ lr/scanner: Package scanner provides adapters turning conventional
tokenizers into producers of parlr tokens.

The base package contains data types which are used throughout all the
other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parlr
