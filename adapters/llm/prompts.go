package llm

const statcheckSystem = "You extract reported statistical test results from scientific text."

const statcheckPrompt = `Extract every null-hypothesis significance test reported in the text below.
Only extract t, F, chi2, z and r tests that report both a test statistic and a p-value.

Rules:
- Copy numbers exactly as written, keeping every decimal place and trailing zero. Write numbers as JSON strings.
- test_type is one of "t", "f", "chi2", "z", "r".
- df1 and df2 are the degrees of freedom; use null when the test has none (z) or only one (t, chi2, r use df1).
- For r, df1 is n - 2 when only the sample size is given.
- operator is "=", "<" or ">" as printed before the p-value.
- epsilon is the Huynh-Feldt epsilon if one is reported for that F test, otherwise null.
- tail is "one" only when the text says the test was one-tailed or directional, otherwise "two".
- When the p-value is only reported as not significant, write "ns" as reported_p_value.
- Do not compute anything.

Answer with exactly this format and nothing else:

tests = [
  {"test_type": "t", "df1": "30", "df2": null, "test_value": "1.96", "operator": "=", "reported_p_value": ".059", "epsilon": null, "tail": "two"}
]

If there are no tests, answer: tests = []

Text:
%s`

const grimSystem = "You extract reported means and their sample sizes, only when the data are explicitly integer-based."

const grimPrompt = `Extract the reported means from the text below that can be checked with the GRIM test.

Extract a mean only when all of these hold:
- It is explicitly a mean (for example "M = 3.45" or "mean = 3.45"), not a median, difference, percentage or test statistic.
- It summarises integer-valued responses, such as items on a 1-7 scale, and the text says so.
- Its sample size is stated and clearly belongs to that mean. For a t test, N = df + 1; for an ANOVA with df1 and df2, there are df1 + 1 groups and df1 + 1 + df2 participants in total.

Copy the mean exactly as written, keeping trailing zeros, as a JSON string. The sample size is an integer.
Do not round or compute anything else.

Answer with exactly this format and nothing else:

tests = [
  {"reported_mean": "5.22", "sample_size": 9, "discrete_reasoning": "mean of 7-point Likert responses, N = 9 in the same sentence"}
]

If there are no such means, answer: tests = []

Text:
%s`
